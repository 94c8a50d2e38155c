// Package sqlite reads and writes points as rows of a SQLite table, one
// REAL column per dimension.
package sqlite

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kbukum/pointflow/errors"
)

// Extensions are the file extensions the SQLite drivers are inferred for.
var Extensions = []string{".sqlite", ".sqlite3", ".db"}

// DefaultTable is the table used when none is configured.
const DefaultTable = "points"

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Storage("open", err).WithDetail("filename", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Storage("open", err).WithDetail("filename", path)
	}
	return db, nil
}

// isBusy reports whether err is SQLite refusing a lock held elsewhere.
func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// quote returns name as a SQL identifier.
func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
