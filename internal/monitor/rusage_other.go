//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package monitor

import (
	"errors"
	"runtime"
)

func readChildUsage() (*Usage, error) {
	return nil, &Error{Kind: KindResourceUsage, Err: errors.New("not supported on " + runtime.GOOS)}
}
