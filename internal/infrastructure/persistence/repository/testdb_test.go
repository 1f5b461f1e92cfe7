package repository

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// newTestDB opens an in-memory sqlite database with just the tables the
// tests touch. One connection, so every statement sees the same database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			company_id INTEGER NOT NULL,
			amount REAL NOT NULL,
			original_currency TEXT NOT NULL,
			converted_amount REAL NOT NULL,
			category TEXT NOT NULL,
			description TEXT,
			expense_date DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			rejection_reason TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE approval_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			expense_id INTEGER NOT NULL,
			approver_id INTEGER NOT NULL,
			rule_id INTEGER,
			sequence INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			comments TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}
