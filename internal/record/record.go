// Package record defines the invocation record produced by a monitored run
// and its on-disk YAML encoding.
package record

import (
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Inaccessible replaces any process attribute the OS refuses to disclose.
const Inaccessible = "(inaccessible)"

// Ext is the file extension of a stored record.
const Ext = ".yaml"

// ProcessInfo is a snapshot of one process in the call tree.
type ProcessInfo struct {
	Name       string   `yaml:"name"`
	PID        int      `yaml:"pid"`
	Cmdline    []string `yaml:"commandline"`
	WorkingDir string   `yaml:"working_directory"`
}

// Record holds everything observed about a single monitored invocation.
// Resource counters are pointers so that unreadable values are omitted
// instead of being reported as zero.
type Record struct {
	Command     []string `yaml:"command"`
	StartTime   float64  `yaml:"start_time"`
	FinishTime  float64  `yaml:"finish_time"`
	ElapsedTime float64  `yaml:"elapsed_time"`
	ReturnCode  int      `yaml:"return_code"`

	UserCPU                *float64 `yaml:"user_cpu,omitempty"`
	SystemCPU              *float64 `yaml:"system_cpu,omitempty"`
	ResidentMemory         *int64   `yaml:"resident_memory_size,omitempty"` // kilobytes
	MinorPageFaults        *int64   `yaml:"minor_page_fault,omitempty"`
	MajorPageFaults        *int64   `yaml:"major_page_fault,omitempty"`
	SwapOuts               *int64   `yaml:"swap_outs,omitempty"`
	BlockInputs            *int64   `yaml:"block_inputs,omitempty"`
	BlockOutputs           *int64   `yaml:"block_outputs,omitempty"`
	VoluntaryCtxSwitches   *int64   `yaml:"voluntary_context_switches,omitempty"`
	InvoluntaryCtxSwitches *int64   `yaml:"involuntary_context_switches,omitempty"`

	CallTree   []ProcessInfo `yaml:"call_tree"`
	WorkingDir string        `yaml:"working_directory"`
	Package    string        `yaml:"package,omitempty"`

	GitCommit string `yaml:"git_commit,omitempty"`
	GitBranch string `yaml:"git_branch,omitempty"`
}

// FileName returns the name a record is stored under:
// <basename of command[0]>_<start time, six fractional digits>.yaml.
func (r *Record) FileName() string {
	base := "unknown"
	if len(r.Command) > 0 {
		base = filepath.Base(r.Command[0])
	}
	return fmt.Sprintf("%s_%.6f%s", base, r.StartTime, Ext)
}

// Marshal encodes a record as YAML.
func Marshal(r *Record) ([]byte, error) {
	return yaml.Marshal(r)
}

// Unmarshal decodes and validates a YAML record.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Record) validate() error {
	if len(r.Command) == 0 {
		return errors.New("record has no command")
	}
	return nil
}

// Float returns a pointer to v, for populating optional counters.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for populating optional counters.
func Int(v int64) *int64 { return &v }
