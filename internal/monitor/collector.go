package monitor

import (
	"os"

	"github.com/majorcontext/watchprocess/internal/record"
)

// Collector gathers one kind of telemetry around the child's execution.
// Start runs before the child is spawned; Finish runs after it terminates,
// even when spawning or waiting failed, and writes into the shared record.
type Collector interface {
	Name() string
	Start() error
	Finish(sink *record.Record) error
}

// WorkingDirectory records the directory the wrapper was invoked from.
type WorkingDirectory struct {
	dir string
}

func (w *WorkingDirectory) Name() string { return "working-directory" }

func (w *WorkingDirectory) Start() error {
	dir, err := os.Getwd()
	if err != nil {
		dir = record.Inaccessible
	}
	w.dir = dir
	return nil
}

func (w *WorkingDirectory) Finish(sink *record.Record) error {
	sink.WorkingDir = w.dir
	return nil
}
