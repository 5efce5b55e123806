// Package session owns the in-memory upload registry for one service run.
// Uploads are memoized by content digest: re-sending the same bytes never
// re-parses the workbook. Nothing here outlives the process.
package session

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"maudash/domain/metrics"
)

// WorkbookLoader parses a stored workbook file into raw tables.
type WorkbookLoader func(path string) (map[metrics.DatasetKey]metrics.RawTable, error)

// Upload is one ingested workbook with its shaped datasets. Immutable after
// creation.
type Upload struct {
	ID        string
	Filename  string
	Digest    string
	Path      string
	CreatedAt time.Time
	Datasets  map[metrics.DatasetKey]metrics.ShapedTable
}

// Store registers uploads and serves their shaped datasets.
type Store struct {
	storage  *LocalFileStorage
	loader   WorkbookLoader
	resolver metrics.RegionResolver

	mu       sync.RWMutex
	uploads  map[string]*Upload
	byDigest map[string]string

	group singleflight.Group
}

// NewStore creates an empty upload store.
func NewStore(storage *LocalFileStorage, loader WorkbookLoader, resolver metrics.RegionResolver) *Store {
	return &Store{
		storage:  storage,
		loader:   loader,
		resolver: resolver,
		uploads:  make(map[string]*Upload),
		byDigest: make(map[string]string),
	}
}

// Ingest stores the uploaded file, then parses and shapes it unless an
// upload with the same content digest already exists. created reports
// whether a new entry was made.
func (s *Store) Ingest(file io.Reader, filename string) (*Upload, bool, error) {
	path, digest, err := s.storage.Store(file, filename)
	if err != nil {
		return nil, false, err
	}

	if existing, ok := s.byContent(digest); ok {
		log.Printf("[Store] Upload %s matches existing upload %s, skipping re-parse", filename, existing.ID)
		s.storage.Delete(path)
		return existing, false, nil
	}

	// singleflight collapses concurrent identical uploads into one parse.
	result, err, _ := s.group.Do(digest, func() (interface{}, error) {
		if existing, ok := s.byContent(digest); ok {
			return existing, nil
		}
		return s.ingestNew(path, filename, digest)
	})
	if err != nil {
		s.storage.Delete(path)
		return nil, false, err
	}

	upload := result.(*Upload)
	if upload.Path != path {
		// Another caller's copy won the parse; ours is redundant.
		s.storage.Delete(path)
		return upload, false, nil
	}
	return upload, true, nil
}

func (s *Store) ingestNew(path, filename, digest string) (*Upload, error) {
	tables, err := s.loader(path)
	if err != nil {
		return nil, err
	}

	datasets := make(map[metrics.DatasetKey]metrics.ShapedTable, len(tables))
	for key, table := range tables {
		shaped := metrics.Shape(table, s.resolver)
		log.Printf("[Store] Shaped %s: %d country records, %d aggregate records, %d periods",
			table.Sheet, len(shaped.Records), len(shaped.Aggregates), len(shaped.Periods))
		datasets[key] = shaped
	}

	upload := &Upload{
		ID:        uuid.New().String(),
		Filename:  filename,
		Digest:    digest,
		Path:      path,
		CreatedAt: time.Now(),
		Datasets:  datasets,
	}

	s.mu.Lock()
	s.uploads[upload.ID] = upload
	s.byDigest[digest] = upload.ID
	s.mu.Unlock()

	return upload, nil
}

func (s *Store) byContent(digest string) (*Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byDigest[digest]
	if !ok {
		return nil, false
	}
	upload, ok := s.uploads[id]
	return upload, ok
}

// Get returns an upload by ID.
func (s *Store) Get(id string) (*Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	upload, ok := s.uploads[id]
	return upload, ok
}

// Dataset returns one shaped dataset of an upload.
func (s *Store) Dataset(id string, key metrics.DatasetKey) (metrics.ShapedTable, bool) {
	upload, ok := s.Get(id)
	if !ok {
		return metrics.ShapedTable{}, false
	}
	shaped, ok := upload.Datasets[key]
	return shaped, ok
}
