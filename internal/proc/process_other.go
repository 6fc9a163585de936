//go:build !linux && !darwin

package proc

import (
	"fmt"
	"os"
	"runtime"
)

// Read only knows about the current process on this platform.
func Read(pid int) (Snapshot, error) {
	if pid == os.Getpid() {
		return Self(), nil
	}
	return Snapshot{}, fmt.Errorf("pid %d: process inspection not supported on %s", pid, runtime.GOOS)
}
