package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/majorcontext/watchprocess/internal/query"
	"github.com/majorcontext/watchprocess/internal/storage"
	"github.com/majorcontext/watchprocess/internal/ui"
)

var (
	collectYes     bool
	collectCSV     bool
	collectSQLite  bool
	collectOutput  string
	collectFilters []string
)

var collectCmd = &cobra.Command{
	Use:   "collect [flags]",
	Short: "Export stored invocation records",
	Long: `Export every stored invocation record as YAML (the default), CSV, or a
SQLite database.

--filter-greater-than keeps only records where the named numeric field is
present and greater than the threshold. It may be repeated; a record is kept
if it passes any one of the filters. The threshold is given either as
FIELD=VALUE or as a separate argument:

  watchprocess collect --csv --filter-greater-than elapsed_time=10
  watchprocess collect --csv --filter-greater-than user_cpu 2.5`,
	Args: cobra.ArbitraryArgs,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().BoolVarP(&collectYes, "yes", "y", false, "overwrite the output file without asking")
	collectCmd.Flags().BoolVar(&collectCSV, "csv", false, "write CSV instead of YAML")
	collectCmd.Flags().BoolVar(&collectSQLite, "sqlite", false, "write a SQLite database (requires --output-filename)")
	collectCmd.Flags().StringVarP(&collectOutput, "output-filename", "O", "", "write to `PATH` instead of stdout")
	collectCmd.Flags().StringArrayVar(&collectFilters, "filter-greater-than", nil,
		"keep records whose `FIELD` exceeds a value (FIELD=VALUE or FIELD VALUE)")
	collectCmd.MarkFlagsMutuallyExclusive("csv", "sqlite")
}

type collectOptions struct {
	format query.Format
	sqlite bool
	output string
	yes    bool
	filter query.Filter
}

func runCollect(cmd *cobra.Command, args []string) error {
	filter, err := parseFilters(collectFilters, args)
	if err != nil {
		return err
	}
	opts := collectOptions{
		format: query.FormatYAML,
		sqlite: collectSQLite,
		output: collectOutput,
		yes:    collectYes,
		filter: filter,
	}
	if collectCSV {
		opts.format = query.FormatCSV
	}
	return collect(cmd.OutOrStdout(), storage.NewResultStore(cfg.ResultsDirectory), opts)
}

// parseFilters pairs each --filter-greater-than value with its threshold.
// A value without '=' takes its threshold from the next positional
// argument, in order.
func parseFilters(specs, args []string) (query.Filter, error) {
	var filter query.Filter
	for _, spec := range specs {
		var (
			t   query.Threshold
			err error
		)
		if strings.Contains(spec, "=") {
			t, err = query.ParseThresholdSpec(spec)
		} else {
			if len(args) == 0 {
				return nil, fmt.Errorf("--filter-greater-than %s: missing threshold value", spec)
			}
			t, err = query.ParseThreshold(spec, args[0])
			args = args[1:]
		}
		if err != nil {
			return nil, err
		}
		filter = append(filter, t)
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	return filter, nil
}

func collect(stdout io.Writer, store *storage.ResultStore, opts collectOptions) error {
	if opts.sqlite && opts.output == "" {
		return errors.New("--sqlite requires --output-filename")
	}
	if opts.output != "" {
		proceed, err := confirmOverwrite(opts.output, opts.yes)
		if err != nil || !proceed {
			return err
		}
	}

	engine := query.NewEngine(store)

	if opts.sqlite {
		n, err := engine.ExportSQLite(opts.output, opts.filter)
		if err != nil {
			return fmt.Errorf("exporting to %s: %w", opts.output, err)
		}
		ui.Infof("%s Wrote %d records to %s", ui.OKTag(), n, opts.output)
		return nil
	}

	collectTo := func(w io.Writer) (int, error) {
		n, err := engine.Collect(w, query.CollectOptions{Format: opts.format, Filter: opts.filter})
		if err != nil {
			return 0, fmt.Errorf("collecting records: %w", err)
		}
		return n, nil
	}

	if opts.output == "" {
		_, err := collectTo(stdout)
		return err
	}
	n, err := writeOutput(opts.output, collectTo)
	if err != nil {
		return err
	}
	ui.Infof("%s Wrote %d records to %s", ui.OKTag(), n, opts.output)
	return nil
}

// writeOutput runs fn against a temp file next to path and renames it into
// place only when fn succeeds, so a failed export leaves path untouched.
func writeOutput(path string, fn func(io.Writer) (int, error)) (int, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := fn(tmp)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return n, nil
}

func confirmOverwrite(path string, yes bool) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) || yes {
		return true, nil
	}
	ok, err := ui.Confirm(fmt.Sprintf("%s already exists. Overwrite?", path))
	if errors.Is(err, ui.ErrNotInteractive) {
		return false, fmt.Errorf("%s already exists (use -y to overwrite)", path)
	}
	if err != nil {
		return false, err
	}
	if !ok {
		ui.Infof("Aborted.")
	}
	return ok, nil
}
