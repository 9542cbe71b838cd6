// Package storage implements the ledger store on SQLite.
//
// All amounts are integer cents; timestamps are stored as
// "YYYY-MM-DD HH:MM:SS" text and dates as "YYYY-MM-DD", written by Go rather
// than the database so that day windows follow the process clock.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// ErrInviteCodesExhausted is returned when family creation cannot find a free
// invite code within the retry budget.
var ErrInviteCodesExhausted = errors.New("invite code space exhausted")

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDateTime(s string) time.Time {
	t, err := time.ParseInLocation(dateTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDate(s string) time.Time {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
