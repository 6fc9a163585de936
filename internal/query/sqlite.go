package query

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver registration

	"github.com/majorcontext/watchprocess/internal/record"
)

// ExportSQLite writes the records passing filter into a fresh SQLite
// database at path, replacing any existing file. It returns how many
// records were exported.
func (e *Engine) ExportSQLite(path string, filter Filter) (int, error) {
	recs, err := e.Select(filter)
	if err != nil {
		return 0, err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("replacing %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return 0, err
	}
	if err := insertRecords(db, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}

func createTables(db *sql.DB) error {
	cols := []string{"id INTEGER PRIMARY KEY", "command TEXT NOT NULL"}
	for _, f := range record.Fields {
		cols = append(cols, f.Name+" "+columnType(f))
	}
	cols = append(cols, "git_commit TEXT", "git_branch TEXT")

	_, err := db.Exec(`
		CREATE TABLE invocations (` + strings.Join(cols, ", ") + `);
		CREATE TABLE call_tree (
			invocation_id     INTEGER NOT NULL REFERENCES invocations(id),
			depth             INTEGER NOT NULL,
			pid               INTEGER NOT NULL,
			name              TEXT NOT NULL,
			commandline       TEXT NOT NULL,
			working_directory TEXT NOT NULL
		);
		CREATE INDEX idx_call_tree_invocation ON call_tree(invocation_id);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// columnType uses NUMERIC affinity so integral counters are stored as
// integers and times as reals.
func columnType(f record.Field) string {
	if f.Numeric {
		return "NUMERIC"
	}
	return "TEXT"
}

func insertRecords(db *sql.DB, recs []*record.Record) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	names := []string{"id", "command"}
	for _, f := range record.Fields {
		names = append(names, f.Name)
	}
	names = append(names, "git_commit", "git_branch")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")

	invStmt, err := tx.Prepare(`INSERT INTO invocations (` + strings.Join(names, ", ") + `) VALUES (` + placeholders + `)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer invStmt.Close()

	treeStmt, err := tx.Prepare(`
		INSERT INTO call_tree (invocation_id, depth, pid, name, commandline, working_directory)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer treeStmt.Close()

	for i, r := range recs {
		id := i + 1
		args := []any{id, strings.Join(r.Command, " ")}
		for _, f := range record.Fields {
			args = append(args, columnValue(f, r))
		}
		args = append(args, nullString(r.GitCommit), nullString(r.GitBranch))
		if _, err := invStmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting invocation: %w", err)
		}

		for depth, p := range r.CallTree {
			_, err := treeStmt.Exec(id, depth, p.PID, p.Name, strings.Join(p.Cmdline, " "), p.WorkingDir)
			if err != nil {
				return fmt.Errorf("inserting call tree: %w", err)
			}
		}
	}
	return tx.Commit()
}

func columnValue(f record.Field, r *record.Record) any {
	if f.Numeric {
		if v, ok := f.Number(r); ok {
			return v
		}
		return nil
	}
	if v, ok := f.Format(r); ok {
		return v
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
