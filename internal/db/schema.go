package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS books (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL,
    author      TEXT NOT NULL,
    isbn        TEXT NOT NULL,
    available   INTEGER NOT NULL DEFAULT 1 CHECK (available IN (0, 1)),
    cover       BLOB,
    cover_mime  TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at  DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_books_isbn_active
    ON books(isbn) WHERE deleted_at IS NULL;

CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);

CREATE TABLE IF NOT EXISTS members (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    phone      TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_members_email_active
    ON members(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS borrows (
    id          INTEGER PRIMARY KEY,
    book_id     INTEGER NOT NULL REFERENCES books(id),
    member_id   INTEGER NOT NULL REFERENCES members(id),
    borrowed_at DATETIME NOT NULL,
    returned_at DATETIME,
    CHECK (returned_at IS NULL OR julianday(returned_at) >= julianday(borrowed_at))
);

CREATE INDEX IF NOT EXISTS idx_borrows_member ON borrows(member_id);

-- At most one open borrow per book.
CREATE UNIQUE INDEX IF NOT EXISTS idx_borrows_open_book
    ON borrows(book_id) WHERE returned_at IS NULL;
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: books imported with an open borrow but a stale
	// availability flag are marked as on loan.
	`UPDATE books SET available = 0
	     WHERE available = 1 AND id IN (SELECT book_id FROM borrows WHERE returned_at IS NULL)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Migrate ensures the schema and runs the migration list.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
