package monitor

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/majorcontext/watchprocess/internal/log"
)

// pathEnv is the search path variable rewritten for the child.
const pathEnv = "PATH"

// Runner executes the genuine binary synchronously with the caller's stdio.
type Runner struct {
	Args []string
	Env  []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner builds a runner for args with args[0] replaced by resolved and
// PATH in environ replaced by remainingPath. Every other variable is copied
// unchanged.
func NewRunner(args []string, resolved, remainingPath string, environ []string) *Runner {
	argv := append([]string{resolved}, args[1:]...)
	return &Runner{
		Args:   argv,
		Env:    substituteEnv(environ, pathEnv, remainingPath),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts the child, waits for it, and returns the exit code the wrapper
// should exit with. A child killed by a signal maps to 128+signal on Unix.
// The returned error is non-nil only when no exit status could be obtained.
func (r *Runner) Run() (int, error) {
	cmd := exec.Command(r.Args[0], r.Args[1:]...)
	cmd.Env = r.Env
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		return 1, &Error{Kind: KindChildSpawn, Name: r.Args[0], Err: err}
	}
	log.Debug("child started", "pid", cmd.Process.Pid, "args", r.Args)

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitCode(exitErr.ProcessState), nil
	}
	if cmd.ProcessState != nil {
		return exitCode(cmd.ProcessState), &Error{Kind: KindMonitor, Name: r.Args[0], Err: err}
	}
	return 1, &Error{Kind: KindMonitor, Name: r.Args[0], Err: err}
}

func substituteEnv(environ []string, key, value string) []string {
	out := make([]string, 0, len(environ)+1)
	replaced := false
	for _, kv := range environ {
		k, _, _ := strings.Cut(kv, "=")
		if envKeyEqual(k, key) {
			if !replaced {
				out = append(out, key+"="+value)
				replaced = true
			}
			continue
		}
		out = append(out, kv)
	}
	if !replaced {
		out = append(out, key+"="+value)
	}
	return out
}

func envKeyEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
