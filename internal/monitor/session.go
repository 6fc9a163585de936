package monitor

import (
	"errors"
	"fmt"

	"github.com/majorcontext/watchprocess/internal/record"
)

// Child is the process a session observes.
type Child interface {
	Command() []string
	Run() (int, error)
}

// Command returns the argv the runner executes.
func (r *Runner) Command() []string { return r.Args }

// Session runs a child between its collectors' Start and Finish calls and
// assembles the invocation record.
type Session struct {
	child      Child
	collectors []Collector
}

// NewSession returns a session starting collectors in the given order.
func NewSession(child Child, collectors ...Collector) *Session {
	return &Session{child: child, collectors: collectors}
}

// Run starts every collector, runs the child, then finishes every started
// collector exactly once in reverse order. Finish errors are joined with the
// run error. A panic is re-raised after the collectors have finished.
//
// The returned record is always non-nil and holds whatever was collected.
func (s *Session) Run() (rec *record.Record, code int, err error) {
	rec = &record.Record{}
	code = 1
	started := make([]Collector, 0, len(s.collectors))

	defer func() {
		p := recover()
		errs := []error{err}
		for i := len(started) - 1; i >= 0; i-- {
			errs = append(errs, finish(started[i], rec))
		}
		err = errors.Join(errs...)
		if p != nil {
			panic(p)
		}
	}()

	for _, c := range s.collectors {
		if err := c.Start(); err != nil {
			return rec, 1, fmt.Errorf("starting %s collector: %w", c.Name(), err)
		}
		started = append(started, c)
	}

	code, err = s.child.Run()
	rec.Command = append([]string(nil), s.child.Command()...)
	rec.ReturnCode = code
	return rec, code, err
}

func finish(c Collector, rec *record.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s collector panicked: %v", c.Name(), p)
		}
	}()
	if err := c.Finish(rec); err != nil {
		return fmt.Errorf("finishing %s collector: %w", c.Name(), err)
	}
	return nil
}
