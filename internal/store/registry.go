package store

import (
	"fmt"
	"strings"
)

// Registry lists the tables a Store must contain and how to create them.
//
// A Registry is filled once at startup, before any Store is opened with
// it, and is not safe for concurrent mutation.
type Registry struct {
	tables  []string
	creates []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a table and its create statement.
// The statement must use CREATE TABLE IF NOT EXISTS so the create script
// can run against an already initialized store.
func (r *Registry) Register(table, createSQL string) error {
	if table == "" {
		return fmt.Errorf("register table: empty name")
	}
	for _, t := range r.tables {
		if t == table {
			return fmt.Errorf("register table %q: already registered", table)
		}
	}
	r.tables = append(r.tables, table)
	r.creates = append(r.creates, strings.TrimRight(strings.TrimSpace(createSQL), ";"))
	return nil
}

// Tables returns the registered table names in registration order.
func (r *Registry) Tables() []string {
	return append([]string(nil), r.tables...)
}

// Len returns the number of registered tables.
func (r *Registry) Len() int {
	return len(r.tables)
}

// CreateScript returns a single script creating every registered table
// inside one transaction, in registration order.
func (r *Registry) CreateScript() string {
	var b strings.Builder
	b.WriteString("PRAGMA foreign_keys=OFF;BEGIN TRANSACTION;")
	for _, create := range r.creates {
		b.WriteString(create)
		b.WriteString("; ")
	}
	b.WriteString("COMMIT;")
	return b.String()
}

// countTablesSQL counts how many registered tables exist in sqlite_master.
func (r *Registry) countTablesSQL() string {
	quoted := make([]string, len(r.tables))
	for i, t := range r.tables {
		quoted[i] = Quote(t)
	}
	return "select count(*) as table_count from sqlite_master " +
		"where type = 'table' and tbl_name in (" + strings.Join(quoted, ", ") + ");"
}
