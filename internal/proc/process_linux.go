//go:build linux

package proc

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Read snapshots pid from /proc. Only the stat file is required; the command
// line and working directory are left empty when access is denied.
func Read(pid int) (Snapshot, error) {
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return Snapshot{}, err
	}
	name, ppid, err := parseStat(string(stat))
	if err != nil {
		return Snapshot{}, fmt.Errorf("pid %d: %w", pid, err)
	}

	s := Snapshot{PID: pid, PPID: ppid, Name: name}

	if raw, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid)); err == nil {
		s.Cmdline = splitCmdline(raw)
	}
	if cwd, err := os.Readlink(fmt.Sprintf("/proc/%d/cwd", pid)); err == nil {
		s.WorkingDir = cwd
	}
	return s, nil
}

// parseStat extracts comm and ppid. comm is parenthesised and may itself
// contain spaces and parentheses, so the last ')' ends it.
func parseStat(raw string) (string, int, error) {
	open := strings.Index(raw, "(")
	end := strings.LastIndex(raw, ")")
	if open == -1 || end == -1 || end < open {
		return "", 0, fmt.Errorf("invalid stat format")
	}
	fields := strings.Fields(raw[end+1:])
	if len(fields) < 2 {
		return "", 0, fmt.Errorf("invalid stat format")
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid ppid %q: %w", fields[1], err)
	}
	return raw[open+1 : end], ppid, nil
}

func splitCmdline(raw []byte) []string {
	raw = bytes.TrimRight(raw, "\x00")
	if len(raw) == 0 {
		return nil
	}
	parts := bytes.Split(raw, []byte{0})
	args := make([]string, len(parts))
	for i, p := range parts {
		args[i] = string(p)
	}
	return args
}
