//go:build darwin

package proc

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Read snapshots pid through sysctl. Darwin exposes another process's
// working directory only through libproc, so it is reported for the current
// process alone.
func Read(pid int) (Snapshot, error) {
	kp, err := unix.SysctlKinfoProc("kern.proc.pid", pid)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pid %d: %w", pid, err)
	}
	if int(kp.Proc.P_pid) != pid {
		return Snapshot{}, fmt.Errorf("pid %d: no such process", pid)
	}

	s := Snapshot{
		PID:  pid,
		PPID: int(kp.Eproc.Ppid),
		Name: unix.ByteSliceToString(kp.Proc.P_comm[:]),
	}

	if buf, err := unix.SysctlRaw("kern.procargs2", pid); err == nil {
		s.Cmdline = parseProcArgs(buf)
	}
	if pid == os.Getpid() {
		if wd, err := os.Getwd(); err == nil {
			s.WorkingDir = wd
		}
	}
	return s, nil
}
