package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/ash/internal/config"
)

// Store owns one open handle to a history database file.
//
// A Store runs statements strictly one at a time and is not safe for
// concurrent use. Close it on every exit path.
type Store struct {
	db     *sql.DB
	path   string
	reg    *Registry
	cfg    config.Provider
	logger *slog.Logger
	clock  Clock
	intN   func(int) int
}

// Option configures a Store.
type Option func(*Store)

// WithConfig sets the provider the retry policy is read from.
func WithConfig(cfg config.Provider) Option {
	return func(s *Store) { s.cfg = cfg }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock replaces the clock used for backoff sleeps.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Open creates or opens the SQLite database at path and makes sure every
// table in reg exists.
//
// The file is created empty if missing. The driver's own busy handler is
// disabled so lock contention surfaces to the store's retry policy, and the
// pool is limited to one connection so last_insert_rowid is per handle.
func Open(path string, reg *Registry, opts ...Option) (*Store, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	s := &Store{
		path:   path,
		reg:    reg,
		cfg:    config.Map{},
		logger: slog.New(slog.DiscardHandler),
		clock:  systemClock{},
		intN:   defaultIntN,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := createIfMissing(path); err != nil {
		return nil, unavailable(path, "failed to create new DB file", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=0")
	if err != nil {
		return nil, unavailable(path, "failed to open database", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable(path, "failed to connect to database", err)
	}
	s.db = db

	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		s.db = nil
		return nil, err
	}

	return s, nil
}

// Close releases the database handle. Calling it again is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema counts the registered tables present in the database and
// runs the registry's create script unless all of them already exist.
// It is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	registered := s.reg.Len()

	rs, err := s.Query(ctx, s.reg.countTablesSQL(), 0, false)
	if err != nil {
		return err
	}
	defined := 0
	if rs != nil && rs.Rows() == 1 {
		defined, _ = strconv.Atoi(rs.Cell(0, 0))
	}
	if defined == registered {
		return nil
	}

	s.logger.Info("initializing schema", "path", s.path, "registered", registered, "defined", defined)
	if err := s.execScript(ctx, s.reg.CreateScript()); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	if defined > registered {
		s.logger.Warn("unexpected number of tables",
			"expected", registered, "found", defined)
	}
	return nil
}

// execScript runs a multi-statement script under the retry policy.
// A transaction left open by a failed attempt is rolled back before retrying.
func (s *Store) execScript(ctx context.Context, script string) error {
	_, err := s.retry(script, func() error {
		_, err := s.db.ExecContext(ctx, script)
		if err != nil {
			_, _ = s.db.ExecContext(ctx, "ROLLBACK")
		}
		return err
	})
	return err
}

func createIfMissing(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	return f.Close()
}
