package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/roach88/ash/internal/config"
	"github.com/roach88/ash/internal/testutil"
)

const createNotes = `CREATE TABLE IF NOT EXISTS notes (
  id integer primary key autoincrement,
  body varchar(100) not null,
  tag varchar(20),
  UNIQUE(body)
)`

const createTags = `CREATE TABLE IF NOT EXISTS tags (
  id integer primary key autoincrement,
  name varchar(20) not null
)`

// testRegistry returns a registry with the notes table.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register("notes", createNotes); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	return reg
}

// createTestStore opens a store in a temp dir with the notes table.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path, testRegistry(t), opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// note is a Record for the notes table.
type note struct {
	body string
	tag  string
}

func (n note) TableName() string { return "notes" }

func (n note) Values() map[string]string {
	return map[string]string{"body": Quote(n.body), "tag": Quote(n.tag)}
}

// mapRecord is a Record with explicit literals.
type mapRecord struct {
	table  string
	values map[string]string
}

func (r mapRecord) TableName() string         { return r.table }
func (r mapRecord) Values() map[string]string { return r.values }

// retryConfig sets the retry budget with no backoff.
func retryConfig(maxRetries string) config.Map {
	return config.Map{
		config.KeyDBMaxRetries:        maxRetries,
		config.KeyDBFailTimeout:       "10",
		config.KeyDBFailRandomTimeout: "0",
	}
}

// lockStore holds an exclusive lock on path from a second connection,
// the way a concurrent shell writing history would. The returned function
// releases the lock; it is also registered as a cleanup.
func lockStore(t *testing.T, path string) func() {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=0")
	if err != nil {
		t.Fatalf("open locker: %v", err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("locker conn: %v", err)
	}
	if _, err := conn.ExecContext(ctx, "BEGIN EXCLUSIVE"); err != nil {
		t.Fatalf("BEGIN EXCLUSIVE: %v", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			_, _ = conn.ExecContext(ctx, "ROLLBACK")
			conn.Close()
			db.Close()
		})
	}
	t.Cleanup(release)
	return release
}

// tableCount counts user tables in s.
func tableCount(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'").Scan(&n)
	if err != nil {
		t.Fatalf("count tables: %v", err)
	}
	return n
}

func newFakeClock() *testutil.FakeClock {
	return testutil.NewFakeClock()
}
