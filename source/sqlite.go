// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/sqlite.go
// Summary: SQLite-backed source paging items with LIMIT/OFFSET.

package source

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY,   -- dataset position
    text TEXT NOT NULL
);
`

// SQLite serves items stored in a local database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Printf("Source: opened sqlite database %s", path)
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Count returns the number of stored items.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return total, nil
}

// Fetch implements Source. Items are ordered by id; positions are row
// ordinals, so gaps in ids do not leave holes in the dataset. The count and
// the page come from one read transaction so a concurrent Seed cannot tear
// them apart.
func (s *SQLite) Fetch(ctx context.Context, offset, length int) (Page, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return Page{}, fmt.Errorf("begin fetch: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count items: %w", err)
	}
	offset, n := clampRange(offset, length, total)
	if n == 0 {
		return Page{Total: total}, tx.Commit()
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, text FROM items ORDER BY id LIMIT ? OFFSET ?`, n, offset)
	if err != nil {
		return Page{}, fmt.Errorf("query items offset=%d: %w", offset, err)
	}
	defer rows.Close()

	items := make([]Item, 0, n)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Text); err != nil {
			return Page{}, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate items: %w", err)
	}
	if err := rows.Close(); err != nil {
		return Page{}, fmt.Errorf("close items: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Page{}, fmt.Errorf("commit fetch: %w", err)
	}
	return Page{Total: total, Items: items}, nil
}

// NumberText is the default Seed text: the 1-based position.
func NumberText(i int) string {
	return strconv.Itoa(i + 1)
}

// Seed replaces the table contents with n items whose text is text(i).
// A nil text uses NumberText.
func (s *SQLite) Seed(ctx context.Context, n int, text func(i int) string) error {
	if text == nil {
		text = NumberText
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO items (id, text) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, i, text(i)); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	log.Printf("Source: seeded %d items into %s", n, s.path)
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
