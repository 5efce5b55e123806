package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maudash/domain/metrics"
	apperrors "maudash/internal/errors"
)

type stubResolver struct{}

func (stubResolver) Resolve(name string) (string, bool) {
	if name == "USA" {
		return "USA", true
	}
	return "", false
}

func stubLoader(calls *int) WorkbookLoader {
	return func(path string) (map[metrics.DatasetKey]metrics.RawTable, error) {
		*calls++
		table := metrics.RawTable{
			Sheet:   "MAU Signals",
			Headers: []string{"Country", "Jan"},
			Rows:    [][]string{{"USA", "1,000"}},
		}
		return map[metrics.DatasetKey]metrics.RawTable{
			metrics.DatasetSignals: table,
			metrics.DatasetDevices: table,
		}, nil
	}
}

func newTestStore(t *testing.T, calls *int) *Store {
	t.Helper()
	storage := NewLocalFileStorage(t.TempDir())
	return NewStore(storage, stubLoader(calls), stubResolver{})
}

func TestIngestShapesBothDatasets(t *testing.T) {
	calls := 0
	store := newTestStore(t, &calls)

	upload, created, err := store.Ingest(strings.NewReader("workbook-bytes"), "metrics.xlsx")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, upload.ID)
	assert.Equal(t, "metrics.xlsx", upload.Filename)
	require.Len(t, upload.Datasets, 2)

	signals := upload.Datasets[metrics.DatasetSignals]
	require.Len(t, signals.Records, 1)
	assert.Equal(t, "USA", signals.Records[0].RegionCode)
}

func TestIngestMemoizesByContent(t *testing.T) {
	calls := 0
	store := newTestStore(t, &calls)

	first, created, err := store.Ingest(strings.NewReader("same-bytes"), "a.xlsx")
	require.NoError(t, err)
	assert.True(t, created)

	// Same content, different filename: no re-parse, same upload.
	second, created, err := store.Ingest(strings.NewReader("same-bytes"), "b.xlsx")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, calls)
}

func TestIngestDistinctContentParsesAgain(t *testing.T) {
	calls := 0
	store := newTestStore(t, &calls)

	first, _, err := store.Ingest(strings.NewReader("bytes-one"), "a.xlsx")
	require.NoError(t, err)

	second, created, err := store.Ingest(strings.NewReader("bytes-two"), "a.xlsx")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, calls)
}

func TestIngestLoaderFailureSurfaces(t *testing.T) {
	storage := NewLocalFileStorage(t.TempDir())
	loader := func(path string) (map[metrics.DatasetKey]metrics.RawTable, error) {
		return nil, apperrors.SheetMissing("MAU Signals")
	}
	store := NewStore(storage, loader, stubResolver{})

	_, _, err := store.Ingest(strings.NewReader("bad"), "bad.xlsx")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSheetMissing, apperrors.GetCode(err))

	// A failed ingest leaves nothing behind; retrying the same bytes parses again.
	_, _, err = store.Ingest(strings.NewReader("bad"), "bad.xlsx")
	require.Error(t, err)
}

func TestGetAndDataset(t *testing.T) {
	calls := 0
	store := newTestStore(t, &calls)

	upload, _, err := store.Ingest(strings.NewReader("bytes"), "a.xlsx")
	require.NoError(t, err)

	got, ok := store.Get(upload.ID)
	require.True(t, ok)
	assert.Equal(t, upload.ID, got.ID)

	_, ok = store.Get("nope")
	assert.False(t, ok)

	shaped, ok := store.Dataset(upload.ID, metrics.DatasetDevices)
	require.True(t, ok)
	assert.Len(t, shaped.Records, 1)

	_, ok = store.Dataset(upload.ID, metrics.DatasetKey("bogus"))
	assert.False(t, ok)
}
