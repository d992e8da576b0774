package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Record is a row bound for one table.
// Values maps column names to SQL literals that are already quoted.
type Record interface {
	TableName() string
	Values() map[string]string
}

// Query runs a statement and collects its rows.
//
// Rows are gathered until the statement is done, a constraint violation
// stops it, or limit rows (when limit > 0) have been read. With reverse the
// gathered rows are returned last to first. A statement yielding no rows
// returns a nil ResultSet and a nil error.
func (s *Store) Query(ctx context.Context, query string, limit int, reverse bool) (*ResultSet, error) {
	var (
		headers []string
		data    [][]string
	)

	_, err := s.retry(query, func() error {
		headers, data = nil, nil

		stmt, err := s.db.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		rows, err := stmt.QueryContext(ctx)
		if err != nil {
			return err
		}
		defer rows.Close()

		for limit <= 0 || len(data) < limit {
			if !rows.Next() {
				return rows.Err()
			}
			if headers == nil {
				if headers, err = rows.Columns(); err != nil {
					return err
				}
			}
			row, err := scanRow(rows, len(headers))
			if err != nil {
				return err
			}
			data = append(data, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, nil
	}
	if reverse {
		slices.Reverse(data)
	}
	return &ResultSet{headers: headers, data: data}, nil
}

// Exec runs a statement for its effect under the retry policy.
// A constraint violation is logged and is not an error.
func (s *Store) Exec(ctx context.Context, query string) error {
	_, _, err := s.exec(ctx, query)
	return err
}

// Insert writes rec and returns the row id SQLite assigned to it.
// A nil record, or one rejected by a constraint, returns 0.
func (s *Store) Insert(ctx context.Context, rec Record) (int64, error) {
	if rec == nil {
		return 0, nil
	}

	res, constrained, err := s.exec(ctx, InsertSQL(rec))
	if err != nil {
		return 0, err
	}
	if constrained {
		return 0, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert into %s: last insert id: %w", rec.TableName(), err)
	}
	return id, nil
}

// InsertSQL returns the INSERT statement for rec, columns in sorted order.
func InsertSQL(rec Record) string {
	values := rec.Values()
	if len(values) == 0 {
		return "INSERT INTO " + rec.TableName() + " DEFAULT VALUES; "
	}

	columns := make([]string, 0, len(values))
	for c := range values {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	literals := make([]string, len(columns))
	for i, c := range columns {
		literals[i] = values[c]
	}

	return "INSERT INTO " + rec.TableName() +
		" (" + strings.Join(columns, ", ") + ") VALUES (" +
		strings.Join(literals, ", ") + "); "
}

func (s *Store) exec(ctx context.Context, query string) (sql.Result, bool, error) {
	var res sql.Result
	constrained, err := s.retry(query, func() error {
		res = nil

		stmt, err := s.db.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		res, err = stmt.ExecContext(ctx)
		return err
	})
	return res, constrained, err
}

func scanRow(rows *sql.Rows, columns int) ([]string, error) {
	cells := make([]sql.NullString, columns)
	dest := make([]any, columns)
	for i := range cells {
		dest[i] = &cells[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	row := make([]string, columns)
	for i, c := range cells {
		row[i] = c.String
	}
	return row, nil
}
