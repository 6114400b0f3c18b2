package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage persists uploaded documents on disk under a base directory.
// The document registry stores the relative path only, never the bytes.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// SaveStream copies from reader into the target file path and returns the
// relative path handle.
func (s *LocalStorage) SaveStream(filename string, r io.Reader) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare uploads directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(filename string) (*os.File, error) {
	file, err := os.Open(s.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(filename string) error {
	if err := os.Remove(s.resolve(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *LocalStorage) Path(filename string) string {
	return s.resolve(filename)
}

func (s *LocalStorage) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}
