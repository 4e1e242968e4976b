package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

const defaultBusyTimeout = 5 * time.Second

// builder renders squirrel queries with SQLite placeholders.
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// querier is satisfied by both *sqlx.DB and *sqlx.Tx so read helpers can run
// inside or outside a transaction.
type querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

type DB struct {
	*sqlx.DB
	logger *zerolog.Logger
}

type Option func(*options)

type options struct {
	busyTimeout time.Duration
}

// WithBusyTimeout sets how long a writer waits for the database lock.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// NewDB opens the SQLite store and brings the schema up to date.
//
// The pool holds a single connection and every transaction starts with
// BEGIN IMMEDIATE, so an availability re-check and the writes that depend on
// it are never interleaved with another writer.
func NewDB(path string, logger *zerolog.Logger, opts ...Option) (*DB, error) {
	o := options{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if !isMemory(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite3", buildDSN(path, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: conn, logger: logger}
	if err := db.migrate(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return db, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

func buildDSN(path string, busyTimeout time.Duration) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_txlock=immediate&_busy_timeout=%d&_foreign_keys=on",
		path, sep, busyTimeout.Milliseconds())
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
		capacity INTEGER NOT NULL DEFAULT 1,
		description TEXT NOT NULL DEFAULT '',
		amenities TEXT NOT NULL DEFAULT '[]',
		images TEXT NOT NULL DEFAULT '[]',
		available BOOLEAN NOT NULL DEFAULT 1,
		total_units INTEGER NOT NULL DEFAULT 1 CHECK (total_units >= 1),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	// room_id on bookings and booking_items is not a foreign key: cancelled
	// history may outlive the room type it points at.
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guest_name TEXT NOT NULL,
		guest_email TEXT NOT NULL,
		guest_phone TEXT NOT NULL DEFAULT '',
		check_in TEXT NOT NULL,
		check_out TEXT NOT NULL,
		special_requests TEXT NOT NULL DEFAULT '',
		total_cents INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		room_id INTEGER,
		guests INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (check_out > check_in)
	)`,
	`CREATE TABLE IF NOT EXISTS booking_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_id INTEGER NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		room_id INTEGER NOT NULL,
		room_name TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		guests INTEGER NOT NULL DEFAULT 1,
		price_per_night_cents INTEGER NOT NULL,
		subtotal_cents INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_rooms_type ON rooms(type)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_dates ON bookings(check_in, check_out)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_room_id ON bookings(room_id)`,
	`CREATE INDEX IF NOT EXISTS idx_booking_items_booking_id ON booking_items(booking_id)`,
	`CREATE INDEX IF NOT EXISTS idx_booking_items_room_id ON booking_items(room_id)`,

	// One row per inventory claim: item rows plus legacy bookings without items.
	`CREATE VIEW IF NOT EXISTS booking_stays AS
		SELECT b.id AS booking_id, i.room_id AS room_id, i.quantity AS quantity,
		       b.check_in AS check_in, b.check_out AS check_out, b.status AS status
		FROM booking_items i
		JOIN bookings b ON b.id = i.booking_id
		UNION ALL
		SELECT b.id, b.room_id, 1, b.check_in, b.check_out, b.status
		FROM bookings b
		WHERE b.room_id IS NOT NULL
		  AND NOT EXISTS (SELECT 1 FROM booking_items i WHERE i.booking_id = b.id)`,
}

// columnMigrations adds columns that older databases were created without.
var columnMigrations = []struct {
	table, column, ddl string
}{
	{"rooms", "videos", `ALTER TABLE rooms ADD COLUMN videos TEXT NOT NULL DEFAULT '[]'`},
	{"rooms", "version", `ALTER TABLE rooms ADD COLUMN version INTEGER NOT NULL DEFAULT 1`},
	{"bookings", "version", `ALTER TABLE bookings ADD COLUMN version INTEGER NOT NULL DEFAULT 1`},
}

func (db *DB) migrate(ctx context.Context) error {
	for _, query := range schema {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	for _, m := range columnMigrations {
		exists, err := db.columnExists(ctx, m.table, m.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.ExecContext(ctx, m.ddl); err != nil {
			return fmt.Errorf("add column %s.%s: %w", m.table, m.column, err)
		}
		db.logger.Info().Str("table", m.table).Str("column", m.column).Msg("column added")
	}
	return nil
}

func (db *DB) columnExists(ctx context.Context, table, column string) (bool, error) {
	var columns []struct {
		CID        int     `db:"cid"`
		Name       string  `db:"name"`
		Type       string  `db:"type"`
		NotNull    bool    `db:"notnull"`
		Default    *string `db:"dflt_value"`
		PrimaryKey int     `db:"pk"`
	}
	if err := db.SelectContext(ctx, &columns, fmt.Sprintf("PRAGMA table_info(%s)", table)); err != nil {
		return false, fmt.Errorf("inspect table %s: %w", table, err)
	}
	for _, c := range columns {
		if c.Name == column {
			return true, nil
		}
	}
	return false, nil
}
