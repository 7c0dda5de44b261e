package db

import (
	"fmt"
	"os"

	"github.com/applytrack/internal/domain"
)

// QuickCheck runs SQLite's fast consistency check
func (db *DB) QuickCheck() error {
	var result string
	if err := db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return domain.WrapDatabaseOperation("quick check", err)
	}
	if result != "ok" {
		return domain.WrapDatabaseOperation("quick check", fmt.Errorf("database reported: %s", result))
	}
	return nil
}

// Optimize refreshes the query planner statistics
func (db *DB) Optimize() error {
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		return domain.WrapDatabaseOperation("optimize", err)
	}
	return nil
}

// Vacuum rebuilds the database file, returning free pages to the filesystem
func (db *DB) Vacuum() error {
	if _, err := db.Exec("VACUUM"); err != nil {
		return domain.WrapDatabaseOperation("vacuum", err)
	}
	return nil
}

// FileSize returns the size of the database file in bytes
func (db *DB) FileSize() (int64, error) {
	info, err := os.Stat(db.dbPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
