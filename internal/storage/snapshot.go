// Package storage provides whole-file JSON snapshot persistence for the
// bot's stores.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// Snapshot persists a single value as one JSON file that is rewritten in
// full on every save. There are no incremental or append writes; the
// in-memory value always remains authoritative between saves.
type Snapshot[T any] struct {
	path string
}

// NewSnapshot creates a snapshot store backed by the given file path.
func NewSnapshot[T any](path string) *Snapshot[T] {
	return &Snapshot[T]{path: path}
}

// Path returns the file path the snapshot is stored at.
func (s *Snapshot[T]) Path() string {
	return s.path
}

// Load reads the snapshot from disk. A missing file returns the zero value
// with found=false and no error. A malformed or unreadable file returns the
// zero value together with the error so callers can log it and start empty.
func (s *Snapshot[T]) Load() (T, bool, error) {
	var value T

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return value, false, nil
		}

		return value, false, fmt.Errorf("failed to read snapshot %s: %w", s.path, err)
	}

	if err := sonic.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, false, fmt.Errorf("failed to decode snapshot %s: %w", s.path, err)
	}

	return value, true, nil
}

// Save serializes the value and replaces the snapshot file. The data is
// written to a temporary file first and renamed into place so a crash
// mid-write never leaves a truncated snapshot behind.
func (s *Snapshot[T]) Save(value T) error {
	data, err := sonic.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	temp, err := os.CreateTemp(dir, "snapshot-")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot file: %w", err)
	}

	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return fmt.Errorf("failed to write snapshot %s: %w", s.path, err)
	}

	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return fmt.Errorf("failed to sync snapshot %s: %w", s.path, err)
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)

		return fmt.Errorf("failed to close snapshot %s: %w", s.path, err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)

		return fmt.Errorf("failed to replace snapshot %s: %w", s.path, err)
	}

	return nil
}
