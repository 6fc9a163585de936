// Package query reads stored invocation records back for reporting and
// housekeeping.
package query

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/majorcontext/watchprocess/internal/log"
	"github.com/majorcontext/watchprocess/internal/record"
)

// Store is the subset of the result store the engine needs.
type Store interface {
	List() ([]string, error)
	Read(path string) (*record.Record, error)
	Remove(path string) error
}

// Engine runs collect and clean over a store.
type Engine struct {
	store   Store
	workers int
}

// NewEngine returns an engine over store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, workers: runtime.GOMAXPROCS(0)}
}

// Load parses every stored record. Records come back in file name order.
// Files that fail to parse are skipped and reported in the second return
// value; they never abort the batch. The error is non-nil only when the
// store itself cannot be listed.
func (e *Engine) Load() ([]*record.Record, []error, error) {
	paths, err := e.store.List()
	if err != nil {
		return nil, nil, err
	}

	recs := make([]*record.Record, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, path := range paths {
		g.Go(func() error {
			recs[i], errs[i] = e.store.Read(path)
			return nil
		})
	}
	_ = g.Wait()

	var loaded []*record.Record
	var parseErrs []error
	for i := range paths {
		if errs[i] != nil {
			log.Warn("skipping unreadable record", "path", paths[i], "error", errs[i])
			parseErrs = append(parseErrs, errs[i])
			continue
		}
		loaded = append(loaded, recs[i])
	}
	return loaded, parseErrs, nil
}

// Select loads the records that pass filter.
func (e *Engine) Select(filter Filter) ([]*record.Record, error) {
	recs, _, err := e.Load()
	if err != nil {
		return nil, err
	}
	var out []*record.Record
	for _, r := range recs {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Clean deletes every stored record and returns how many were removed. When
// confirm is non-nil it is asked first with the number of records; a false
// answer removes nothing. An empty store never prompts.
func (e *Engine) Clean(confirm func(n int) (bool, error)) (int, error) {
	paths, err := e.store.List()
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, nil
	}

	if confirm != nil {
		ok, err := confirm(len(paths))
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, nil
		}
	}

	removed := 0
	var errs []error
	for _, path := range paths {
		if err := e.store.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
			continue
		}
		log.Debug("removed record", "path", path)
		removed++
	}
	return removed, errors.Join(errs...)
}
