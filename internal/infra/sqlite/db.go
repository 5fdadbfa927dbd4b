// Package sqlite provides the SQLite connection factory for econpulse.
// Uses modernc.org/sqlite, a pure-Go driver, so the binary stays CGO-free.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Register the modernc sqlite driver under the name "sqlite"
	_ "modernc.org/sqlite"
)

// NewDB opens (or creates) a SQLite database at path with production
// settings:
//   - WAL journal mode (concurrent reads during writes)
//   - foreign key enforcement (off by default in SQLite)
//   - 5-second busy timeout for burst writes
//   - synchronous=NORMAL (safe with WAL, faster than FULL)
//
// Use ":memory:" for in-memory databases in tests. The parent directory of
// a file path must already exist; NewDB will not create it.
func NewDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("sqlite.NewDB: parent directory %q does not exist", dir)
		}
	}

	// modernc.org/sqlite applies _pragma=... DSN params at connect time.
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewDB: open %q: %w", path, err)
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise open its own private
		// in-memory database.
		db.SetMaxOpenConns(1)
	} else {
		// WAL allows concurrent readers; SQLite serializes writers itself.
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	if err := db.Ping(); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("sqlite.NewDB: ping %q: %w", path, err)
	}

	return db, nil
}
