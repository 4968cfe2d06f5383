// Package sqlite provides durable implementations of the catalog ports on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.CatalogStore    = (*Store)(nil)
	_ ports.CatalogRestorer = (*Store)(nil)
	_ ports.DailyQuoteStore = (*Store)(nil)
	_ ports.HealthChecker   = (*Store)(nil)
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS authors (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT    NOT NULL,
	profession     TEXT    NOT NULL DEFAULT '',
	bio            TEXT    NOT NULL DEFAULT '',
	birth_date     TEXT    NOT NULL DEFAULT '',
	death_date     TEXT,
	image_url      TEXT    NOT NULL DEFAULT '',
	total_quotes   INTEGER NOT NULL DEFAULT 0,
	popular_quotes TEXT    NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS topics (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT    NOT NULL,
	description  TEXT    NOT NULL DEFAULT '',
	color        TEXT    NOT NULL DEFAULT '',
	icon         TEXT    NOT NULL DEFAULT '',
	total_quotes INTEGER NOT NULL DEFAULT 0,
	featured     INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS quotes (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	text                 TEXT    NOT NULL,
	author_id            INTEGER NOT NULL REFERENCES authors(id),
	category_id          INTEGER NOT NULL REFERENCES topics(id),
	background_image_url TEXT    NOT NULL DEFAULT '',
	date_added           TEXT    NOT NULL,
	featured             INTEGER NOT NULL DEFAULT 0,
	likes                INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
	shares               INTEGER NOT NULL DEFAULT 0 CHECK (shares >= 0),
	bookmarks            INTEGER NOT NULL DEFAULT 0 CHECK (bookmarks >= 0)
);
CREATE INDEX IF NOT EXISTS idx_quotes_author ON quotes(author_id);
CREATE INDEX IF NOT EXISTS idx_quotes_category ON quotes(category_id);
CREATE TABLE IF NOT EXISTS quote_tags (
	quote_id INTEGER NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	tag      TEXT    NOT NULL,
	PRIMARY KEY (quote_id, position)
);
CREATE TABLE IF NOT EXISTS quote_engagement (
	quote_id   INTEGER NOT NULL REFERENCES quotes(id) ON DELETE CASCADE,
	session_id TEXT    NOT NULL,
	liked      INTEGER NOT NULL DEFAULT 0,
	bookmarked INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (quote_id, session_id)
);
CREATE INDEX IF NOT EXISTS idx_engagement_session ON quote_engagement(session_id);
CREATE TABLE IF NOT EXISTS daily_quotes (
	day      TEXT    PRIMARY KEY,
	quote_id INTEGER NOT NULL
);
`

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp DateAdded.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is a catalog store backed by a single SQLite connection.
// Every write runs in a transaction, so writes are serialized by the connection.
type Store struct {
	conn *sql.DB
	now  func() time.Time
	intN func(n int) int
}

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// One connection: an in-memory database lives and dies with it, and SQLite
	// allows a single writer anyway.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)
	conn.SetConnMaxIdleTime(0)

	s := &Store{conn: conn, now: time.Now, intN: rand.IntN}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		return "file::memory:?" + pragmas
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return "file:" + path + sep + pragmas + "&_pragma=journal_mode(WAL)"
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "sqlite" }

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// queryer is satisfied by *sql.DB and *sql.Tx. Helpers take it so they can
// run inside a transaction; with one pooled connection, calling s.conn while
// a transaction is open would deadlock.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// exists reports whether table has a row with id.
func exists(ctx context.Context, q queryer, table string, id int64) (bool, error) {
	var one int

	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("checking %s %d: %w", table, id, err)
	}

	return true, nil
}

func count(ctx context.Context, q queryer, query string, args ...any) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(dateLayout)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	return time.Parse(dateLayout, raw)
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
