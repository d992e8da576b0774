package store

import "fmt"

// ResultSet is an immutable snapshot of a query's headers and rows.
// Every row has exactly Columns cells; SQL NULL is the empty string.
type ResultSet struct {
	headers []string
	data    [][]string
}

// NewResultSet copies headers and data into a ResultSet.
// Queries build these; it is exported so renderers can be fed fixtures.
func NewResultSet(headers []string, data [][]string) (*ResultSet, error) {
	rs := &ResultSet{
		headers: append([]string(nil), headers...),
		data:    make([][]string, len(data)),
	}
	for i, row := range data {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(headers))
		}
		rs.data[i] = append([]string(nil), row...)
	}
	return rs, nil
}

// Headers returns the column names. The slice must not be modified.
func (rs *ResultSet) Headers() []string { return rs.headers }

// Row returns the cells of row r. The slice must not be modified.
func (rs *ResultSet) Row(r int) []string { return rs.data[r] }

// Cell returns the value at row r, column c.
func (rs *ResultSet) Cell(r, c int) string { return rs.data[r][c] }

// Rows returns the number of rows.
func (rs *ResultSet) Rows() int { return len(rs.data) }

// Columns returns the number of columns.
func (rs *ResultSet) Columns() int { return len(rs.headers) }
