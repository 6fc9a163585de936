//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package monitor

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

func readChildUsage() (*Usage, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_CHILDREN, &ru); err != nil {
		return nil, &Error{Kind: KindResourceUsage, Err: err}
	}

	// ru_maxrss is bytes on Darwin and kilobytes elsewhere.
	maxRSS := int64(ru.Maxrss)
	if runtime.GOOS == "darwin" {
		maxRSS /= 1024
	}

	return &Usage{
		UserCPU:                float64(ru.Utime.Nano()) / float64(time.Second),
		SystemCPU:              float64(ru.Stime.Nano()) / float64(time.Second),
		MaxRSS:                 maxRSS,
		MinorPageFaults:        int64(ru.Minflt),
		MajorPageFaults:        int64(ru.Majflt),
		SwapOuts:               int64(ru.Nswap),
		BlockInputs:            int64(ru.Inblock),
		BlockOutputs:           int64(ru.Oublock),
		VoluntaryCtxSwitches:   int64(ru.Nvcsw),
		InvoluntaryCtxSwitches: int64(ru.Nivcsw),
	}, nil
}
