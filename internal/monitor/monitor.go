// Package monitor runs a shadowed command under instrumentation. It resolves
// the genuine binary hidden behind the wrapper on PATH, runs it with the
// caller's stdio, and produces an invocation record describing the run.
package monitor

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/majorcontext/watchprocess/internal/log"
	"github.com/majorcontext/watchprocess/internal/record"
)

// Sink persists a finished record and reports where it went.
type Sink interface {
	Write(rec *record.Record) (string, error)
}

// Options configures one monitored invocation.
type Options struct {
	// Args is the wrapper's own argv; Args[0] is the name it was invoked as.
	Args []string
	// Environ is the caller's environment, in os.Environ form.
	Environ []string
	// SearchPath is the caller's PATH.
	SearchPath string

	MaxDuration    time.Duration
	PackageMarkers []string
	// Git enables the GitInfo collector.
	Git bool

	Sink Sink
}

// Run monitors one invocation and returns the exit code the wrapper should
// exit with. The record is written only when the child was actually run.
func Run(opts Options) (int, error) {
	if len(opts.Args) == 0 {
		return 1, &Error{Kind: KindMonitor, Err: errors.New("no command")}
	}
	log.Debug("running", "args", opts.Args, "path", opts.SearchPath)

	resolved, remaining, err := Resolve(opts.Args[0], opts.SearchPath)
	if err != nil {
		return 1, err
	}

	runner := NewRunner(opts.Args, resolved, remaining, opts.Environ)
	log.Debug("substituting", "args", runner.Args, "path", remaining)

	session := NewSession(runner, Collectors(opts)...)
	rec, code, err := session.Run()
	if err != nil {
		return code, err
	}
	log.Debug("results", "command", rec.Command, "return_code", rec.ReturnCode, "elapsed", rec.ElapsedTime)

	path, err := opts.Sink.Write(rec)
	if err != nil {
		return code, err
	}
	log.Debug("record written", "path", path)
	return code, nil
}

// Collectors returns the collector set for opts, in start order. The timer
// starts last so that it brackets the child as tightly as possible.
func Collectors(opts Options) []Collector {
	cs := []Collector{
		&WorkingDirectory{},
		NewAncestryWalker(Classifiers(opts.PackageMarkers...)...),
	}
	if opts.Git {
		dir, err := os.Getwd()
		if err != nil {
			dir = "."
		}
		cs = append(cs, &GitInfo{Dir: filepath.Clean(dir)})
	}
	return append(cs, NewResourceUsage(), NewTimer(opts.MaxDuration))
}
