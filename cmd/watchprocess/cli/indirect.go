package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/majorcontext/watchprocess/internal/config"
	"github.com/majorcontext/watchprocess/internal/log"
	"github.com/majorcontext/watchprocess/internal/monitor"
	"github.com/majorcontext/watchprocess/internal/storage"
	"github.com/majorcontext/watchprocess/internal/ui"
)

// Name is the program's own name. Invoked under any other name it acts as
// a shadow for that command.
const Name = "watchprocess"

// IsIndirect reports whether argv0 names a shadowed command rather than
// watchprocess itself.
func IsIndirect(argv0 string) bool {
	base := filepath.Base(argv0)
	if runtime.GOOS == "windows" {
		base = strings.TrimSuffix(strings.ToLower(base), ".exe")
	}
	return base != Name
}

// Indirect runs the genuine command named by args[0] under monitoring and
// returns the exit code to exit with: the child's own code, or 1 when
// watchprocess itself failed.
func Indirect(args []string) int {
	settings, err := config.Load()
	if err != nil {
		settings = config.Default()
	}

	if err := log.Init(log.Options{
		Debug:         settings.Debug,
		Quiet:         true,
		Dir:           settings.Log.Dir,
		RetentionDays: settings.Log.RetentionDays,
	}); err != nil && settings.Debug {
		ui.Warnf("failed to initialize file logging: %v", err)
	}
	defer log.Close()
	log.SetInvocation(filepath.Base(args[0]), os.Getpid())

	code, err := monitor.Run(monitor.Options{
		Args:           args,
		Environ:        os.Environ(),
		SearchPath:     os.Getenv("PATH"),
		MaxDuration:    settings.MaxDuration,
		PackageMarkers: settings.PackageMarkers,
		Git:            settings.Git,
		Sink:           storage.NewResultStore(settings.ResultsDirectory),
	})
	if err != nil {
		ui.Errorf("%s: %v", Name, err)
		return 1
	}
	return code
}
