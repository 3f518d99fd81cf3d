package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Registers the pure-Go "sqlite" driver with database/sql. No CGo, so the
	// CLI cross-compiles like any other Go binary.
	_ "modernc.org/sqlite"
)

// SQLiteStorage is the durable Storage used by the CLI: one small database
// file per user profile, playing the part the browser's localStorage played.
//
// SCHEMA:
//
//	local_storage(key TEXT PRIMARY KEY, value TEXT, updated_at DATETIME)
//
// Only one row is ever written today (Key = "user"), but keeping the table
// generic mirrors the localStorage API the web client was written against.
type SQLiteStorage struct {
	conn *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// OpenSQLite opens (creating if needed) the database at path and runs the
// migration.
//
// path examples:
//   - "~/.config/gradlink/session.db" → persistent, survives restarts
//   - ":memory:"                      → gone when closed, used by tests
func OpenSQLite(path string) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// ONE CONNECTION:
	// database/sql is a pool, and every new connection to ":memory:" would
	// be a brand-new empty database. A session store does a handful of tiny
	// queries, so a single connection costs nothing and makes ":memory:"
	// behave like a file.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets a second process (another CLI invocation) read while this one
	// writes, the closest thing we have to "another tab".
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	s := &SQLiteStorage{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return s, nil
}

// Close releases the database. Defer it right after OpenSQLite.
func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS local_storage (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating local_storage table: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM local_storage WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlite: getting %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// SetItem upserts the value. The whole row is replaced in one statement, so
// a reader never sees half of a session.
func (s *SQLiteStorage) SetItem(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: removing %q: %w", key, err)
	}
	return nil
}
