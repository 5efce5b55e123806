package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"maudash/internal/errors"
)

// LocalFileStorage keeps uploaded workbooks on the local filesystem for the
// lifetime of the session. Files get unique names so repeated uploads of the
// same filename never collide.
type LocalFileStorage struct {
	basePath string
}

// NewLocalFileStorage creates a storage rooted at basePath.
func NewLocalFileStorage(basePath string) *LocalFileStorage {
	return &LocalFileStorage{basePath: basePath}
}

// Store copies an uploaded file to disk and returns its path together with
// the SHA-256 digest of its contents. The digest is the upload's identity
// for memoization.
func (s *LocalFileStorage) Store(file io.Reader, filename string) (path string, digest string, err error) {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", "", errors.WithCode(errors.CodeStorageError, errors.Wrap(err, "failed to create storage directory"))
	}

	ext := filepath.Ext(filename)
	baseName := filename[:len(filename)-len(ext)]
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, uuid.New().String()[:8], ext)

	filePath := filepath.Join(s.basePath, uniqueName)

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", "", errors.WithCode(errors.CodeStorageError, errors.Wrap(err, "failed to create destination file"))
	}
	defer destFile.Close()

	// Hash while copying so identity costs no second pass over the file.
	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(destFile, hasher), file); err != nil {
		os.Remove(filePath)
		return "", "", errors.WithCode(errors.CodeStorageError, errors.Wrap(err, "failed to copy file contents"))
	}

	return filePath, hex.EncodeToString(hasher.Sum(nil)), nil
}

// Delete removes a stored file.
func (s *LocalFileStorage) Delete(filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return errors.WithCode(errors.CodeStorageError, errors.Wrap(err, "failed to delete file"))
	}
	return nil
}
