package log

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

const filePrefix = "watchprocess-"

// FileWriter appends to one JSON lines file per day. Many short-lived
// wrapper processes share the same file, so it is always opened O_APPEND.
type FileWriter struct {
	dir      string
	mu       sync.Mutex
	file     *os.File
	currDate string
}

// NewFileWriter creates a FileWriter that writes to dir/watchprocess-YYYY-MM-DD.jsonl.
func NewFileWriter(dir string) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	fw := &FileWriter{dir: dir}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if err := fw.openLocked(time.Now()); err != nil {
		return nil, err
	}
	return fw, nil
}

// Write implements io.Writer, switching files when the date changes.
func (fw *FileWriter) Write(p []byte) (n int, err error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := time.Now()
	if now.Format(time.DateOnly) != fw.currDate {
		if err := fw.openLocked(now); err != nil {
			return 0, err
		}
	}
	return fw.file.Write(p)
}

// Close closes the underlying file.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.file == nil {
		return nil
	}
	err := fw.file.Close()
	fw.file = nil
	return err
}

// Path returns the file currently written to.
func (fw *FileWriter) Path() string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return filepath.Join(fw.dir, fileName(fw.currDate))
}

func (fw *FileWriter) openLocked(now time.Time) error {
	if fw.file != nil {
		fw.file.Close()
	}

	date := now.Format(time.DateOnly)
	f, err := os.OpenFile(filepath.Join(fw.dir, fileName(date)), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	fw.file = f
	fw.currDate = date
	return nil
}

func fileName(date string) string {
	return filePrefix + date + ".jsonl"
}

var datePattern = regexp.MustCompile(`^` + filePrefix + `\d{4}-\d{2}-\d{2}\.jsonl$`)

// Cleanup removes log files older than retentionDays.
func Cleanup(dir string, retentionDays int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !datePattern.MatchString(name) {
			continue
		}
		date := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".jsonl")
		fileDate, err := time.Parse(time.DateOnly, date)
		if err != nil {
			continue
		}
		if fileDate.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}
