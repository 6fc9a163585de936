package monitor

import (
	"errors"
	"fmt"
)

// Kind classifies monitoring failures.
type Kind int

const (
	// KindMonitor is the base category every other kind belongs to.
	KindMonitor Kind = iota
	// KindPathResolution means no second instance of the invoked name was found.
	KindPathResolution
	// KindResourceUsage means OS resource counters could not be read.
	KindResourceUsage
	// KindRecordParse means a stored record could not be decoded.
	KindRecordParse
	// KindDirectoryCreation means the results directory could not be created.
	KindDirectoryCreation
	// KindChildSpawn means the genuine binary could not be started.
	KindChildSpawn
)

func (k Kind) String() string {
	switch k {
	case KindPathResolution:
		return "path resolution"
	case KindResourceUsage:
		return "resource usage unavailable"
	case KindRecordParse:
		return "record parse"
	case KindDirectoryCreation:
		return "directory creation"
	case KindChildSpawn:
		return "child spawn"
	default:
		return "monitor"
	}
}

// Sentinels for errors.Is. Every *Error matches ErrMonitor.
var (
	ErrMonitor           = &Error{Kind: KindMonitor}
	ErrPathResolution    = &Error{Kind: KindPathResolution}
	ErrResourceUsage     = &Error{Kind: KindResourceUsage}
	ErrRecordParse       = &Error{Kind: KindRecordParse}
	ErrDirectoryCreation = &Error{Kind: KindDirectoryCreation}
	ErrChildSpawn        = &Error{Kind: KindChildSpawn}
)

// Error is a monitoring failure. Name and Path carry the offending
// executable name or file for diagnostics.
type Error struct {
	Kind Kind
	Name string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg += " " + e.Name
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind, so errors.Is(err, ErrPathResolution) works for any
// path resolution failure regardless of name or path.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == KindMonitor || t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindMonitor, false
}
