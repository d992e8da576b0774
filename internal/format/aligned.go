package format

import (
	"bufio"
	"io"

	"github.com/roach88/ash/internal/store"
)

// Aligned left-justifies every column to its ColumnWidths width.
// The last column is never padded.
type Aligned struct{}

func (Aligned) Name() string { return "aligned" }

func (Aligned) Description() string {
	return "Columns are aligned and separated with spaces."
}

func (Aligned) Format(w io.Writer, rs *store.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}

	bw := bufio.NewWriter(w)
	widths := ColumnWidths(rs, showHeadings)
	last := rs.Columns() - 1

	if showHeadings {
		for c, h := range rs.Headers() {
			writeAligned(bw, h, widths[c], c == last)
		}
		bw.WriteByte('\n')
	}

	for r := 0; r < rs.Rows(); r++ {
		for c, cell := range rs.Row(r) {
			writeAligned(bw, cell, widths[c], c == last)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
