// Package storage persists invocation records, one YAML file per monitored
// run, in a flat results directory.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/majorcontext/watchprocess/internal/monitor"
	"github.com/majorcontext/watchprocess/internal/record"
)

// ResultStore manages the results directory. It is created lazily on the
// first write.
type ResultStore struct {
	dir string
}

// NewResultStore returns a store rooted at dir.
func NewResultStore(dir string) *ResultStore {
	return &ResultStore{dir: dir}
}

// Dir returns the results directory.
func (s *ResultStore) Dir() string {
	return s.dir
}

// Write persists rec and returns the file it was written to. Two runs of the
// same executable that start in the same microsecond share a file name; the
// later one wins.
func (s *ResultStore) Write(rec *record.Record) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", &monitor.Error{Kind: monitor.KindDirectoryCreation, Path: s.dir, Err: err}
	}

	data, err := record.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}

	path := filepath.Join(s.dir, rec.FileName())

	// Write then rename so a concurrent reader never sees a partial record.
	tmp, err := os.CreateTemp(s.dir, ".record-*.tmp")
	if err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}
	return path, nil
}

// List returns the paths of all stored records in file name order. A
// missing directory holds no records.
func (s *ResultStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), record.Ext) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	return paths, nil
}

// Read loads the record stored at path.
func (s *ResultStore) Read(path string) (*record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &monitor.Error{Kind: monitor.KindRecordParse, Path: path, Err: err}
	}
	rec, err := record.Unmarshal(data)
	if err != nil {
		return nil, &monitor.Error{Kind: monitor.KindRecordParse, Path: path, Err: err}
	}
	return rec, nil
}

// Remove deletes the record stored at path.
func (s *ResultStore) Remove(path string) error {
	return os.Remove(path)
}

// DefaultDir returns the default results directory, $TMPDIR/watchprocess.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "watchprocess")
}
