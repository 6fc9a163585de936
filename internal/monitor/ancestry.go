package monitor

import (
	"os"

	"github.com/majorcontext/watchprocess/internal/log"
	"github.com/majorcontext/watchprocess/internal/proc"
	"github.com/majorcontext/watchprocess/internal/record"
)

// AncestryWalker snapshots the chain of processes that led to this
// invocation and tags it with the first matching classifier.
type AncestryWalker struct {
	Classifiers []Classifier

	pid   int
	walk  func(pid int) []proc.Snapshot
	chain []record.ProcessInfo
}

// NewAncestryWalker walks from the current process.
func NewAncestryWalker(classifiers ...Classifier) *AncestryWalker {
	return &AncestryWalker{
		Classifiers: classifiers,
		pid:         os.Getpid(),
		walk:        proc.Ancestry,
	}
}

func (a *AncestryWalker) Name() string { return "ancestry" }

// Start snapshots the ancestry before the child exists, so the chain ends
// with the wrapper itself.
func (a *AncestryWalker) Start() error {
	snaps := a.walk(a.pid)
	if len(snaps) == 0 {
		log.Debug("process ancestry unreadable, recording self only", "pid", a.pid)
		snaps = []proc.Snapshot{proc.Self()}
	}
	a.chain = make([]record.ProcessInfo, len(snaps))
	for i, s := range snaps {
		a.chain[i] = processInfo(s)
	}
	return nil
}

func (a *AncestryWalker) Finish(sink *record.Record) error {
	sink.CallTree = a.chain
	if tag, ok := classify(a.chain, a.Classifiers); ok {
		sink.Package = tag
	}
	return nil
}

func processInfo(s proc.Snapshot) record.ProcessInfo {
	info := record.ProcessInfo{
		Name:       s.Name,
		PID:        s.PID,
		Cmdline:    s.Cmdline,
		WorkingDir: s.WorkingDir,
	}
	if info.Name == "" {
		info.Name = record.Inaccessible
	}
	if len(info.Cmdline) == 0 {
		info.Cmdline = []string{record.Inaccessible}
	}
	if info.WorkingDir == "" {
		info.WorkingDir = record.Inaccessible
	}
	return info
}
