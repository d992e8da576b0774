package format

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/roach88/ash/internal/store"
)

// Table draws a bordered ASCII table.
type Table struct{}

func (Table) Name() string { return "table" }

func (Table) Description() string {
	return "Columns are drawn inside a bordered table."
}

func (Table) Format(w io.Writer, rs *store.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}

	table := tablewriter.NewWriter(w)
	if showHeadings {
		table.SetHeader(rs.Headers())
		table.SetAutoFormatHeaders(false)
	}
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	rows := make([][]string, rs.Rows())
	for r := range rows {
		rows[r] = rs.Row(r)
	}
	table.AppendBulk(rows)
	table.Render()
	return nil
}
