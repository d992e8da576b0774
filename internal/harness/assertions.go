package harness

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/ash/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
// This prevents SQL injection via identifier interpolation.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// evaluateAssertion dispatches to the appropriate assertion function based on type.
func evaluateAssertion(ctx context.Context, s *store.Store, a Assertion) error {
	switch a.Type {
	case AssertRowCount:
		return assertRowCount(ctx, s, a)
	case AssertFinalState:
		return assertFinalState(ctx, s, a)
	case AssertQueryRows:
		return assertQueryRows(ctx, s, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// assertRowCount checks the number of rows in a table matching where.
func assertRowCount(ctx context.Context, s *store.Store, a Assertion) error {
	clause, err := whereClause(a.Where)
	if err != nil {
		return err
	}
	if !validIdentifier.MatchString(a.Table) {
		return fmt.Errorf("invalid table name: %q", a.Table)
	}

	rs, err := s.Query(ctx, fmt.Sprintf("SELECT count(*) FROM %s%s", a.Table, clause), 0, false)
	if err != nil {
		return fmt.Errorf("count %s: %w", a.Table, err)
	}
	want := fmt.Sprint(a.Count)
	if got := rs.Cell(0, 0); got != want {
		return &AssertionError{
			Type:     AssertRowCount,
			Expected: fmt.Sprintf("%s rows in %s%s", want, a.Table, clause),
			Actual:   fmt.Sprintf("%s rows", got),
		}
	}
	return nil
}

// assertFinalState finds exactly one row matching where and compares the
// expected columns (subset match).
func assertFinalState(ctx context.Context, s *store.Store, a Assertion) error {
	clause, err := whereClause(a.Where)
	if err != nil {
		return err
	}
	if !validIdentifier.MatchString(a.Table) {
		return fmt.Errorf("invalid table name: %q", a.Table)
	}

	columns := sortedKeys(a.Expect)
	for _, col := range columns {
		if !validIdentifier.MatchString(col) {
			return fmt.Errorf("invalid column name: %q", col)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(columns, ", "), a.Table, clause)
	rs, err := s.Query(ctx, query, 0, false)
	if err != nil {
		return fmt.Errorf("query %s: %w", a.Table, err)
	}
	if n := rowCount(rs); n != 1 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s%s", a.Table, clause),
			Actual:   fmt.Sprintf("%d rows", n),
		}
	}

	var mismatches []string
	for i, col := range columns {
		if got := rs.Cell(0, i); got != a.Expect[col] {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %q, got %q", col, a.Expect[col], got))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%v", a.Expect),
			Actual:   strings.Join(mismatches, "; "),
		}
	}
	return nil
}

// assertQueryRows runs a query and compares every row, in order.
func assertQueryRows(ctx context.Context, s *store.Store, a Assertion) error {
	rs, err := s.Query(ctx, a.Query, 0, false)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	got := make([][]string, rowCount(rs))
	for r := range got {
		got[r] = rs.Row(r)
	}
	if !equalRows(got, a.Rows) {
		return &AssertionError{
			Type:     AssertQueryRows,
			Expected: fmt.Sprintf("%q", a.Rows),
			Actual:   fmt.Sprintf("%q", got),
		}
	}
	return nil
}

// rowCount treats the nil ResultSet of an empty query as zero rows.
func rowCount(rs *store.ResultSet) int {
	if rs == nil {
		return 0
	}
	return rs.Rows()
}

// whereClause builds " WHERE a = 'x' AND b = 'y'" from filters, with keys
// sorted and values quoted as SQL literals. An empty value matches NULL.
func whereClause(where map[string]string) (string, error) {
	if len(where) == 0 {
		return "", nil
	}
	var conds []string
	for _, col := range sortedKeys(where) {
		if !validIdentifier.MatchString(col) {
			return "", fmt.Errorf("invalid column name: %q", col)
		}
		if lit := store.Quote(where[col]); lit == store.Null {
			conds = append(conds, col+" IS NULL")
		} else {
			conds = append(conds, fmt.Sprintf("%s = %s", col, lit))
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func equalRows(got, want [][]string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if len(got[i]) != len(want[i]) {
			return false
		}
		for j := range got[i] {
			if got[i][j] != want[i][j] {
				return false
			}
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
