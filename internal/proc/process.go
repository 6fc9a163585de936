// Package proc reads point-in-time snapshots of running processes and walks
// their parent chain.
package proc

import (
	"os"
	"path/filepath"
)

// Snapshot describes one process. A zero-valued Name, WorkingDir or nil
// Cmdline means the OS refused to disclose that attribute.
type Snapshot struct {
	PID        int
	PPID       int
	Name       string
	Cmdline    []string
	WorkingDir string
}

// Self describes the current process from what the runtime already knows.
// It never fails, so an ancestry chain always has at least one element.
func Self() Snapshot {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return Snapshot{
		PID:        os.Getpid(),
		PPID:       os.Getppid(),
		Name:       filepath.Base(os.Args[0]),
		Cmdline:    append([]string(nil), os.Args...),
		WorkingDir: wd,
	}
}

// Ancestry returns the chain of processes from the top-most reachable
// ancestor down to pid. The walk stops at pid 1, at a process whose parent
// is 0, at the first process that cannot be read, or when a pid repeats.
func Ancestry(pid int) []Snapshot {
	var chain []Snapshot
	seen := make(map[int]bool)

	for current := pid; current > 0; {
		if seen[current] {
			break
		}
		seen[current] = true

		p, err := Read(current)
		if err != nil {
			break
		}
		chain = append(chain, p)

		if p.PID == 1 || p.PPID == 0 {
			break
		}
		current = p.PPID
	}

	return reverse(chain)
}

func reverse(in []Snapshot) []Snapshot {
	for i, j := 0, len(in)-1; i < j; i, j = i+1, j-1 {
		in[i], in[j] = in[j], in[i]
	}
	return in
}
