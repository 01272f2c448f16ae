package sqlite

import (
	"database/sql"

	"github.com/flemzord/sovereign/internal/memory"
)

// OpenHistoryStore opens a SQLite database at the given path with the
// default settings and returns a HistoryStore backed by it. The caller is
// responsible for closing the returned *sql.DB when done.
//
// The database is created with WAL mode, a 5 s busy timeout, and a single
// connection (SQLite serialises writes). The schema is migrated automatically.
func OpenHistoryStore(path string) (memory.HistoryStore, *sql.DB, error) {
	s, err := Open(Config{Path: path})
	if err != nil {
		return nil, nil, err
	}
	return s, s.db, nil
}
