package records

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/teenjuna/decu/result"
)

const table = "result"

// Capability registers *Table under "sqlite". It is skipped when the SQLite driver can't open a
// database, e.g. in a build without cgo.
var Capability = result.Capability{
	Name:     "records",
	Probe:    probe,
	Register: register,
}

func register(r *result.Registry) error {
	return result.Register(r, "sqlite", Write, Read)
}

func probe() error {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}

// Write stores t at path as a SQLite database holding a single table. An existing file is
// replaced.
func Write(path string, t *Table) error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table has no columns")
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}

	db, err := open(path, false)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	if err := insert(db, t); err != nil {
		_ = db.Close()
		return err
	}

	return db.Close()
}

// Read loads the table stored at path.
func Read(path string) (*Table, error) {
	// The driver would create a missing database.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := open(path, true)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("select * from %s order by rowid", table))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	t := New(columns...)
	for rows.Next() {
		row := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		t.Rows = append(t.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return t, nil
}

func insert(db *sql.DB, t *Table) error {
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = quote(c)
	}

	if _, err := db.Exec(fmt.Sprintf(
		"create table %s (%s)",
		table, strings.Join(columns, ", "),
	)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(
		"insert into %s (%s) values (%s)",
		table,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			_ = tx.Rollback()
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(t.Columns))
		}
		if _, err := stmt.Exec(row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func open(path string, readOnly bool) (*sql.DB, error) {
	params := url.Values{}
	params.Add("_timeout", "5000") // 5s
	if readOnly {
		params.Add("mode", "ro")
	} else {
		params.Add("_txlock", "immediate")
		params.Add("_journal", "delete")
		params.Add("_sync", "full")
	}

	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)
	db, err := sql.Open("sqlite3", "file:"+escaped+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
