// Package migrate applies a directory of "*.sql" files against a
// PostgreSQL database in lexicographic filename order, one file per
// transaction, recording what it has already applied in a
// schema_migrations bookkeeping table. It is deliberately not a
// schema-diff tool: no down migrations, no generated DDL, just an
// ordered batch-exec, matching the narrow "migration application"
// collaborator the rest of this module treats as an external concern.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	id text PRIMARY KEY,
	applied_at timestamptz NOT NULL DEFAULT now()
)`

// Applied identifies one migration file that Run applied and recorded in
// schema_migrations during that call.
type Applied struct {
	ID string
}

// Run reads every "*.sql" file in dir, in lexicographic filename order,
// and executes each one not already recorded in schema_migrations as a
// single batch statement inside its own transaction. A file's id is its
// base filename (including extension). Run is idempotent: re-running it
// against a database that already has every file applied is a no-op.
func Run(ctx context.Context, db *sql.DB, dir string) ([]Applied, error) {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, &BookkeepingError{Op: "create_table", Cause: err}
	}

	names, err := readSQLFileNames(dir)
	if err != nil {
		return nil, err
	}

	done, err := appliedIDs(ctx, db)
	if err != nil {
		return nil, &BookkeepingError{Op: "load_applied", Cause: err}
	}

	var applied []Applied
	for _, name := range names {
		if done[name] {
			continue
		}
		if err := applyOne(ctx, db, dir, name); err != nil {
			return applied, err
		}
		applied = append(applied, Applied{ID: name})
	}
	return applied, nil
}

func applyOne(ctx context.Context, db *sql.DB, dir, name string) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return &DirError{Op: "read_file", Path: path, Cause: err}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &FileError{Path: path, Cause: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(data)); err != nil {
		return &FileError{Path: path, Cause: err}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (id) VALUES ($1)`, name); err != nil {
		return &FileError{Path: path, Cause: err}
	}
	if err := tx.Commit(); err != nil {
		return &FileError{Path: path, Cause: err}
	}
	return nil
}

func appliedIDs(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		done[id] = true
	}
	return done, rows.Err()
}

func readSQLFileNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DirError{Op: "read_dir", Path: dir, Cause: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Open opens a *sql.DB against dsn using the lib/pq driver, the
// database/sql-compatible counterpart to pgx used elsewhere in this
// module for live introspection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate: open %q: %w", dsn, err)
	}
	return db, nil
}
