package monitor

import (
	"github.com/majorcontext/watchprocess/internal/log"
	"github.com/majorcontext/watchprocess/internal/record"
)

// Usage is the OS resource accounting for reaped children.
type Usage struct {
	UserCPU                float64 // seconds
	SystemCPU              float64 // seconds
	MaxRSS                 int64   // kilobytes
	MinorPageFaults        int64
	MajorPageFaults        int64
	SwapOuts               int64
	BlockInputs            int64
	BlockOutputs           int64
	VoluntaryCtxSwitches   int64
	InvoluntaryCtxSwitches int64
}

// ResourceUsage reports the cumulative resource usage of every child this
// process has waited for, not only the monitored one. A wrapper monitoring a
// wrapper therefore double counts.
type ResourceUsage struct {
	read func() (*Usage, error)
}

// NewResourceUsage returns a collector reading the platform's child usage.
func NewResourceUsage() *ResourceUsage {
	return &ResourceUsage{read: readChildUsage}
}

func (r *ResourceUsage) Name() string { return "resource-usage" }

func (r *ResourceUsage) Start() error { return nil }

// Finish never fails: unreadable counters are logged and left out.
func (r *ResourceUsage) Finish(sink *record.Record) error {
	u, err := r.read()
	if err != nil {
		log.Warn("failed to get resource usage, counters will not be reported", "error", err)
		return nil
	}
	sink.UserCPU = record.Float(u.UserCPU)
	sink.SystemCPU = record.Float(u.SystemCPU)
	sink.ResidentMemory = record.Int(u.MaxRSS)
	sink.MinorPageFaults = record.Int(u.MinorPageFaults)
	sink.MajorPageFaults = record.Int(u.MajorPageFaults)
	sink.SwapOuts = record.Int(u.SwapOuts)
	sink.BlockInputs = record.Int(u.BlockInputs)
	sink.BlockOutputs = record.Int(u.BlockOutputs)
	sink.VoluntaryCtxSwitches = record.Int(u.VoluntaryCtxSwitches)
	sink.InvoluntaryCtxSwitches = record.Int(u.InvoluntaryCtxSwitches)
	return nil
}
