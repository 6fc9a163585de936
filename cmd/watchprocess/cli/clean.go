package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/majorcontext/watchprocess/internal/query"
	"github.com/majorcontext/watchprocess/internal/storage"
	"github.com/majorcontext/watchprocess/internal/ui"
)

var cleanYes bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete all stored invocation records",
	Long: `Delete every record in the results directory.

Asks for confirmation first. Use -y to skip it, which is required when stdin
is not a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := clean(storage.NewResultStore(cfg.ResultsDirectory), cleanYes)
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "skip confirmation prompt")
}

func clean(store *storage.ResultStore, yes bool) (int, error) {
	var confirm func(int) (bool, error)
	declined := false
	if !yes {
		confirm = func(n int) (bool, error) {
			ok, err := ui.Confirm(fmt.Sprintf("Remove %d records?", n))
			if errors.Is(err, ui.ErrNotInteractive) {
				return false, errors.New("refusing to prompt without a terminal (use -y to skip confirmation)")
			}
			declined = err == nil && !ok
			return ok, err
		}
	}

	removed, err := query.NewEngine(store).Clean(confirm)
	if err != nil {
		return removed, err
	}
	if declined {
		ui.Infof("Aborted.")
		return 0, nil
	}
	ui.Infof("Removed %d records from %s", removed, store.Dir())
	return removed, nil
}
