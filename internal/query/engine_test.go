package query

import (
	"bytes"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/majorcontext/watchprocess/internal/monitor"
	"github.com/majorcontext/watchprocess/internal/record"
	"github.com/majorcontext/watchprocess/internal/storage"
)

func gccRecord() *record.Record {
	return &record.Record{
		Command:     []string{"/usr/bin/gcc", "-c", "main.c"},
		StartTime:   1700000000.5,
		FinishTime:  1700000001,
		ElapsedTime: 0.5,
		UserCPU:     record.Float(0.25),
		CallTree: []record.ProcessInfo{
			{Name: "make", PID: 10, Cmdline: []string{"make", "all"}, WorkingDir: "/src"},
			{Name: "gcc", PID: 11, Cmdline: []string{"gcc", "-c", "main.c"}, WorkingDir: "/src"},
		},
		WorkingDir: "/src",
		Package:    "nav_core",
	}
}

func makeRecord() *record.Record {
	return &record.Record{
		Command:     []string{"/usr/bin/make", "-j4"},
		StartTime:   1700000100,
		FinishTime:  1700000112,
		ElapsedTime: 12,
		ReturnCode:  2,
		CallTree: []record.ProcessInfo{
			{Name: "bash", PID: 5, Cmdline: []string{"bash"}, WorkingDir: "/src"},
		},
		WorkingDir: "/src",
	}
}

func newEngine(t *testing.T, recs ...*record.Record) (*Engine, *storage.ResultStore) {
	t.Helper()
	store := storage.NewResultStore(t.TempDir())
	for _, r := range recs {
		_, err := store.Write(r)
		require.NoError(t, err)
	}
	return NewEngine(store), store
}

func TestLoadSkipsUnparseableRecords(t *testing.T) {
	engine, store := newEngine(t, makeRecord(), gccRecord())
	broken := filepath.Join(store.Dir(), "cc_1.000000.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("command: [\n"), 0644))
	empty := filepath.Join(store.Dir(), "ld_2.000000.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("return_code: 0\n"), 0644))

	recs, parseErrs, err := engine.Load()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "/usr/bin/gcc", recs[0].Command[0])
	assert.Equal(t, "/usr/bin/make", recs[1].Command[0])

	require.Len(t, parseErrs, 2)
	for _, e := range parseErrs {
		assert.True(t, errors.Is(e, monitor.ErrRecordParse), "got %v", e)
	}
}

func TestFilterMatch(t *testing.T) {
	elapsed, err := ParseThreshold("elapsed_time", "10")
	require.NoError(t, err)
	cpu, err := ParseThresholdSpec("user_cpu=0.1")
	require.NoError(t, err)

	gcc, mk := gccRecord(), makeRecord()
	tests := []struct {
		name   string
		filter Filter
		rec    *record.Record
		want   bool
	}{
		{name: "empty filter passes", filter: nil, rec: gcc, want: true},
		{name: "below threshold", filter: Filter{elapsed}, rec: gcc, want: false},
		{name: "above threshold", filter: Filter{elapsed}, rec: mk, want: true},
		{name: "absent field never passes", filter: Filter{cpu}, rec: mk, want: false},
		{name: "any threshold suffices", filter: Filter{elapsed, cpu}, rec: gcc, want: true},
		{name: "equal is not greater", filter: Filter{{Field: elapsed.Field, Value: 12}}, rec: mk, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tt.rec))
		})
	}
}

func TestParseThresholdErrors(t *testing.T) {
	_, err := ParseThreshold("wall_time", "1")
	assert.ErrorContains(t, err, `unknown field "wall_time"`)

	_, err = ParseThreshold("package", "1")
	assert.ErrorContains(t, err, "unknown field")

	_, err = ParseThreshold("user_cpu", "fast")
	assert.ErrorContains(t, err, "not a number")

	_, err = ParseThresholdSpec("user_cpu")
	assert.ErrorContains(t, err, "FIELD=VALUE")
}

func TestCollectCSVWithFilter(t *testing.T) {
	engine, _ := newEngine(t, gccRecord(), makeRecord())
	threshold, err := ParseThreshold("elapsed_time", "10")
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := engine.Collect(&buf, CollectOptions{Format: FormatCSV, Filter: Filter{threshold}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(CSVHeader(), ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "/usr/bin/make -j4,1700000100,1700000112,12,2,,"), lines[1])
}

func TestCollectCSVQuotesAndEmptyCells(t *testing.T) {
	rec := gccRecord()
	rec.WorkingDir = "/src/with,comma"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*record.Record{rec}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"/usr/bin/gcc -c main.c,1700000000.5,1700000001,0.5,0,0.25,,,,,,,,,,\"/src/with,comma\",nav_core",
		lines[1])
}

func TestCollectIsIdempotent(t *testing.T) {
	engine, _ := newEngine(t, gccRecord(), makeRecord())

	for _, format := range []Format{FormatCSV, FormatYAML} {
		var first, second bytes.Buffer
		_, err := engine.Collect(&first, CollectOptions{Format: format})
		require.NoError(t, err)
		_, err = engine.Collect(&second, CollectOptions{Format: format})
		require.NoError(t, err)
		assert.Equal(t, first.String(), second.String())
	}
}

func TestCollectYAMLRoundTrip(t *testing.T) {
	gcc, mk := gccRecord(), makeRecord()
	engine, _ := newEngine(t, mk, gcc)

	var buf bytes.Buffer
	n, err := engine.Collect(&buf, CollectOptions{Format: FormatYAML})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var got []*record.Record
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []*record.Record{gcc, mk}, got)
}

func TestCollectYAMLEmpty(t *testing.T) {
	engine, _ := newEngine(t)

	var buf bytes.Buffer
	n, err := engine.Collect(&buf, CollectOptions{Format: FormatYAML})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "[]\n", buf.String())
}

func TestClean(t *testing.T) {
	third := gccRecord()
	third.StartTime = 1700000200
	engine, store := newEngine(t, gccRecord(), makeRecord(), third)

	removed, err := engine.Clean(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	paths, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, paths)

	removed, err = engine.Clean(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestCleanConfirmation(t *testing.T) {
	engine, store := newEngine(t, gccRecord(), makeRecord())

	var asked []int
	removed, err := engine.Clean(func(n int) (bool, error) {
		asked = append(asked, n)
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Equal(t, []int{2}, asked)

	paths, _ := store.List()
	assert.Len(t, paths, 2)

	promptErr := errors.New("no terminal")
	_, err = engine.Clean(func(int) (bool, error) { return false, promptErr })
	assert.ErrorIs(t, err, promptErr)

	removed, err = engine.Clean(func(int) (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestCleanEmptyStoreDoesNotPrompt(t *testing.T) {
	engine, _ := newEngine(t)
	removed, err := engine.Clean(func(int) (bool, error) {
		t.Fatal("confirm called for empty store")
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestExportSQLite(t *testing.T) {
	engine, _ := newEngine(t, gccRecord(), makeRecord())
	path := filepath.Join(t.TempDir(), "results.db")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	n, err := engine.ExportSQLite(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM invocations`).Scan(&count))
	assert.Equal(t, 2, count)

	var command string
	var userCPU sql.NullFloat64
	var returnCode int
	require.NoError(t, db.QueryRow(`
		SELECT command, user_cpu, return_code FROM invocations WHERE package IS NULL
	`).Scan(&command, &userCPU, &returnCode))
	assert.Equal(t, "/usr/bin/make -j4", command)
	assert.False(t, userCPU.Valid)
	assert.Equal(t, 2, returnCode)

	require.NoError(t, db.QueryRow(`
		SELECT COUNT(*) FROM call_tree JOIN invocations ON invocations.id = call_tree.invocation_id
		WHERE invocations.package = 'nav_core'
	`).Scan(&count))
	assert.Equal(t, 2, count)
}
