package monitor

import (
	"fmt"
	"os"
)

// withScratchDir runs fn with the process working directory set to a fresh,
// empty temporary directory. The previous working directory is restored and
// the temporary directory removed on every return path, including panics.
func withScratchDir(fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := os.MkdirTemp("", "watchprocess-lookup-")
	if err != nil {
		return fmt.Errorf("creating lookup directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil && err == nil {
			err = fmt.Errorf("removing lookup directory: %w", rmErr)
		}
	}()

	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("entering lookup directory: %w", err)
	}
	defer func() {
		if cdErr := os.Chdir(prev); cdErr != nil && err == nil {
			err = fmt.Errorf("restoring working directory: %w", cdErr)
		}
	}()

	return fn()
}
