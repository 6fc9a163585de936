package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majorcontext/watchprocess/internal/config"
	"github.com/majorcontext/watchprocess/internal/query"
	"github.com/majorcontext/watchprocess/internal/record"
	"github.com/majorcontext/watchprocess/internal/storage"
	"github.com/majorcontext/watchprocess/internal/ui"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

// isolate gives the test its own HOME and results directory.
func isolate(t *testing.T) string {
	t.Helper()
	results := filepath.Join(t.TempDir(), "results")
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvDebug, "")
	t.Setenv(config.EnvGit, "")
	t.Setenv(config.EnvResultsDirectory, results)
	return results
}

func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	ui.SetWriter(&buf)
	ui.SetColorEnabled(false)
	t.Cleanup(func() { ui.SetWriter(nil) })
	return &buf
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func seed(t *testing.T, dir string, recs ...*record.Record) *storage.ResultStore {
	t.Helper()
	store := storage.NewResultStore(dir)
	for _, r := range recs {
		_, err := store.Write(r)
		require.NoError(t, err)
	}
	return store
}

func invocation(cmd string, start, elapsed float64) *record.Record {
	return &record.Record{
		Command:     []string{cmd},
		StartTime:   start,
		FinishTime:  start + elapsed,
		ElapsedTime: elapsed,
		CallTree:    []record.ProcessInfo{{Name: "sh", PID: 1, Cmdline: []string{"sh"}, WorkingDir: "/"}},
		WorkingDir:  "/",
	}
}

func TestIsIndirect(t *testing.T) {
	assert.False(t, IsIndirect("watchprocess"))
	assert.False(t, IsIndirect("/usr/local/bin/watchprocess"))
	assert.True(t, IsIndirect("/home/me/shadow/gcc"))
	assert.True(t, IsIndirect("make"))
}

func TestIndirectPropagatesExitCode(t *testing.T) {
	requireUnix(t)
	results := isolate(t)

	root := t.TempDir()
	shadow := writeScript(t, filepath.Join(root, "shadow"), "gcc", "exit 99")
	realGcc := writeScript(t, filepath.Join(root, "real"), "gcc", "exit 3")
	t.Setenv("PATH", strings.Join([]string{filepath.Dir(shadow), filepath.Dir(realGcc)}, string(os.PathListSeparator)))

	code := Indirect([]string{shadow, "-c", "main.c"})
	assert.Equal(t, 3, code)

	store := storage.NewResultStore(results)
	paths, err := store.List()
	require.NoError(t, err)
	require.Len(t, paths, 1)

	rec, err := store.Read(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []string{realGcc, "-c", "main.c"}, rec.Command)
	assert.Equal(t, 3, rec.ReturnCode)
}

func TestIndirectResolutionFailure(t *testing.T) {
	requireUnix(t)
	results := isolate(t)
	out := captureUI(t)

	shadow := writeScript(t, filepath.Join(t.TempDir(), "shadow"), "gcc", "exit 0")
	t.Setenv("PATH", filepath.Dir(shadow))

	code := Indirect([]string{shadow})
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Error: watchprocess:")

	paths, err := storage.NewResultStore(results).List()
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestParseFilters(t *testing.T) {
	filter, err := parseFilters([]string{"elapsed_time=10", "user_cpu"}, []string{"2.5"})
	require.NoError(t, err)
	require.Len(t, filter, 2)
	assert.Equal(t, "elapsed_time", filter[0].Field.Name)
	assert.Equal(t, 10.0, filter[0].Value)
	assert.Equal(t, "user_cpu", filter[1].Field.Name)
	assert.Equal(t, 2.5, filter[1].Value)

	_, err = parseFilters([]string{"user_cpu"}, nil)
	assert.ErrorContains(t, err, "missing threshold")

	_, err = parseFilters(nil, []string{"stray"})
	assert.ErrorContains(t, err, "unexpected arguments")

	_, err = parseFilters([]string{"bogus=1"}, nil)
	assert.ErrorContains(t, err, "unknown field")
}

func TestCollectCSVFiltered(t *testing.T) {
	captureUI(t)
	store := seed(t, t.TempDir(),
		invocation("/usr/bin/gcc", 100, 0.5),
		invocation("/usr/bin/ld", 200, 30),
	)
	filter, err := parseFilters([]string{"elapsed_time=10"}, nil)
	require.NoError(t, err)

	var stdout bytes.Buffer
	require.NoError(t, collect(&stdout, store, collectOptions{format: query.FormatCSV, filter: filter}))

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "command,start_time,"))
	assert.True(t, strings.HasPrefix(lines[1], "/usr/bin/ld,200,230,30,"))
}

func TestCollectToFile(t *testing.T) {
	out := captureUI(t)
	store := seed(t, t.TempDir(), invocation("/usr/bin/gcc", 100, 1))
	path := filepath.Join(t.TempDir(), "results.yaml")

	require.NoError(t, collect(nil, store, collectOptions{format: query.FormatYAML, output: path}))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(first), "/usr/bin/gcc")
	assert.Contains(t, out.String(), "Wrote 1 records to "+path)

	// An existing file is only replaced with -y when nobody can be asked.
	ui.SetInput(strings.NewReader(""), false)
	defer ui.SetInput(nil, false)
	err = collect(nil, store, collectOptions{format: query.FormatCSV, output: path})
	assert.ErrorContains(t, err, "use -y to overwrite")

	require.NoError(t, collect(nil, store, collectOptions{format: query.FormatCSV, output: path, yes: true}))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(second), "command,"))
}

func TestCollectOverwriteDeclined(t *testing.T) {
	captureUI(t)
	store := seed(t, t.TempDir(), invocation("/usr/bin/gcc", 100, 1))
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0644))

	ui.SetInput(strings.NewReader("n\n"), true)
	defer ui.SetInput(nil, false)

	require.NoError(t, collect(nil, store, collectOptions{format: query.FormatCSV, output: path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestCollectFailureKeepsExistingOutput(t *testing.T) {
	captureUI(t)
	blocker := filepath.Join(t.TempDir(), "results")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	store := storage.NewResultStore(blocker)

	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0644))

	err := collect(nil, store, collectOptions{format: query.FormatCSV, output: path, yes: true})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "results.csv", entries[0].Name())
}

func TestCollectSQLiteRequiresOutput(t *testing.T) {
	store := seed(t, t.TempDir())
	err := collect(nil, store, collectOptions{sqlite: true})
	assert.ErrorContains(t, err, "--sqlite requires --output-filename")
}

func TestCollectSQLite(t *testing.T) {
	out := captureUI(t)
	store := seed(t, t.TempDir(), invocation("/usr/bin/gcc", 100, 1), invocation("/usr/bin/ld", 200, 2))
	path := filepath.Join(t.TempDir(), "results.db")

	require.NoError(t, collect(nil, store, collectOptions{sqlite: true, output: path}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
	assert.Contains(t, out.String(), "Wrote 2 records")
}

func TestClean(t *testing.T) {
	out := captureUI(t)
	store := seed(t, t.TempDir(),
		invocation("/usr/bin/gcc", 1, 1),
		invocation("/usr/bin/gcc", 2, 1),
		invocation("/usr/bin/ld", 3, 1),
	)

	removed, err := clean(store, true)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Contains(t, out.String(), "Removed 3 records")

	removed, err = clean(store, true)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestCleanPrompts(t *testing.T) {
	out := captureUI(t)
	store := seed(t, t.TempDir(), invocation("/usr/bin/gcc", 1, 1), invocation("/usr/bin/ld", 2, 1))
	defer ui.SetInput(nil, false)

	ui.SetInput(strings.NewReader("n\n"), true)
	removed, err := clean(store, false)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Contains(t, out.String(), "Remove 2 records? [y/N] ")
	assert.Contains(t, out.String(), "Aborted.")

	ui.SetInput(strings.NewReader("y\n"), false)
	_, err = clean(store, false)
	assert.ErrorContains(t, err, "refusing to prompt")

	ui.SetInput(strings.NewReader("y\n"), true)
	removed, err = clean(store, false)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, Execute())
	assert.True(t, strings.HasPrefix(stdout.String(), "watchprocess dev\n"))
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"collect", "clean", "version"} {
		assert.Contains(t, names, want)
	}
}
