package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    fullname TEXT NOT NULL,
    admin INTEGER NOT NULL DEFAULT 0,
    active INTEGER NOT NULL DEFAULT 1,
    avatar TEXT NOT NULL DEFAULT '',
    reg_date INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL UNIQUE,
    content TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    status INTEGER NOT NULL DEFAULT 0 CHECK (status IN (0, 1, 2)),
    user_id INTEGER NOT NULL REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_posts_timestamp ON posts(timestamp DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_posts_status_timestamp ON posts(status, timestamp DESC, id DESC);

CREATE TABLE IF NOT EXISTS labels (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL UNIQUE,
    timestamp INTEGER NOT NULL,
    user_id INTEGER NOT NULL REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_labels_timestamp ON labels(timestamp DESC, id DESC);

CREATE TABLE IF NOT EXISTS label_relationships (
    post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
    label_id INTEGER NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
    PRIMARY KEY (post_id, label_id)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_label_relationships_label ON label_relationships(label_id, post_id);
`

// DefaultTimeout bounds every storage operation when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Options configures a Store.
type Options struct {
	// Timeout bounds each operation; on expiry the caller gets
	// ErrStorageUnavailable.
	Timeout time.Duration
	Logger  *slog.Logger
	// Now overrides the clock used for creation timestamps.
	Now func() time.Time
}

// Store is the SQLite-backed Content Store, Relationship Index and Query
// engine. It owns no state besides the connection pool.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
	validate *inputValidator
}

// Open opens (or creates) the SQLite database at path, ensures its directory
// exists and applies the schema.
//
// Pragmas go through the DSN so they apply to every pooled connection, not
// just the first one. _txlock=immediate makes each write transaction take the
// write lock when it begins.
func Open(path string, opts Options) (*Store, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	busy := strconv.FormatInt(opts.Timeout.Milliseconds(), 10)
	dsn := path + "?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(" + busy + ")" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{
		db:       db,
		logger:   opts.Logger,
		timeout:  opts.Timeout,
		now:      opts.Now,
		validate: newInputValidator(),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers within the store timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return storageError("ping", s.db.PingContext(ctx))
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// inTx runs fn inside a single transaction. Any error rolls everything back,
// so a failed call never leaves a partial write behind.
func (s *Store) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError(op+": begin", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return storageError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storageError(op+": commit", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func toUnix(t time.Time) int64 { return t.UTC().UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return NotFoundf(format, args...)
	}
	return err
}

// offset converts a 1-indexed page into a row offset. Pages below 1 and
// non-positive page sizes are rejected rather than clamped.
func offset(page, pageSize int) (int, error) {
	if page < 1 {
		return 0, InvalidArgumentf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 {
		return 0, InvalidArgumentf("page size must be >= 1, got %d", pageSize)
	}
	return (page - 1) * pageSize, nil
}
