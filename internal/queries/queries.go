// Package queries holds the named SQL queries ash query can run.
//
// Queries are read from YAML files holding a list of entries:
//
//	- name: FAILURES
//	  description: "Commands that exited with a non-zero status."
//	  sql: |
//	    SELECT command FROM commands WHERE rval != 0;
//
// The SQL may refer to shell variables as ${NAME} or ${NAME:-default};
// they are substituted when the query is fetched.
package queries

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ash/internal/config"
)

//go:embed queries.yaml
var builtin []byte

// Query is one saved query.
type Query struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SQL         string `yaml:"sql"`
}

// Set is a collection of queries keyed by name.
type Set struct {
	byName map[string]Query
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{byName: map[string]Query{}}
}

// Defaults returns the built-in queries.
func Defaults() *Set {
	s := NewSet()
	if err := s.Parse(builtin); err != nil {
		panic(fmt.Sprintf("queries: built-in queries: %v", err))
	}
	return s
}

// Load returns the built-in queries overlaid with SYSTEM_QUERY_FILE, then
// USER_QUERY_FILE (default ~/.ash/queries.yaml). Files that do not exist
// are skipped.
func Load(cfg config.Provider, home string) (*Set, error) {
	s := Defaults()

	userFile := cfg.GetString(config.KeyUserQueryFile, "")
	if userFile == "" && home != "" {
		userFile = filepath.Join(home, ".ash", "queries.yaml")
	}

	for _, path := range []string{cfg.GetString(config.KeySystemQueryFile, ""), userFile} {
		if path == "" {
			continue
		}
		if err := s.LoadFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

// LoadFile parses the queries in path into s.
func (s *Set) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	if err := s.Parse(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Parse adds the queries in data to s, replacing any with the same name.
// A document that fails to parse leaves s unchanged.
func (s *Set) Parse(data []byte) error {
	var list []Query
	if err := yaml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse queries: %w", err)
	}

	for i, q := range list {
		if q.Name == "" {
			return fmt.Errorf("parse queries: entry %d has no name", i+1)
		}
		if strings.TrimSpace(q.SQL) == "" {
			return fmt.Errorf("parse queries: %s has no sql", q.Name)
		}
	}
	for _, q := range list {
		s.byName[q.Name] = q
	}
	return nil
}

// Get returns the query stored under name as written, and with its
// variables expanded through getenv.
func (s *Set) Get(name string, getenv func(string) (string, bool)) (raw, sql string, ok bool) {
	q, ok := s.byName[name]
	if !ok {
		return "", "", false
	}
	return q.SQL, Expand(q.SQL, getenv), true
}

// Names returns every query name, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptions maps every query name to its description.
func (s *Set) Descriptions() map[string]string {
	desc := make(map[string]string, len(s.byName))
	for name, q := range s.byName {
		desc[name] = q.Description
	}
	return desc
}
