package format

import (
	"bufio"
	"io"
	"strings"

	"github.com/roach88/ash/internal/store"
)

// Grouped renders like Aligned, but the leading columns whose grouping
// shrinks the printed area are collapsed: a value is printed once, on its
// own line, and the rows below it are indented until it changes.
type Grouped struct{}

func (Grouped) Name() string { return "auto" }

func (Grouped) Description() string {
	return "Automatically group redundant values."
}

func (Grouped) Format(w io.Writer, rs *store.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}
	widths := ColumnWidths(rs, showHeadings)
	return FormatGrouped(w, rs, showHeadings, GroupingLevel(rs, widths))
}

// GroupingLevel returns how many leading columns to group.
//
// Starting from the flat layout (area = rows * sum(widths)), each column is
// grouped in turn, left to right. Grouping column c adds one line for every
// row where its value differs from the row above, and narrows the layout to
// max(width - widths[c], widths[c]) plus c+1 levels of indent. The result
// is the highest level whose simulated area equals the minimum over all
// levels, 0 through Columns.
func GroupingLevel(rs *store.ResultSet, widths []int) int {
	if rs == nil {
		return 0
	}

	width, length := 0, rs.Rows()
	for _, w := range widths {
		width += w
	}

	areas := make([]int, rs.Columns()+1)
	areas[0] = width * length
	minArea := areas[0]

	for c := 0; c < rs.Columns(); c++ {
		prev := ""
		for r := 0; r < rs.Rows(); r++ {
			if v := rs.Cell(r, c); v != prev {
				length++
				prev = v
			}
		}
		width = max(width-widths[c], widths[c]) + Padding*(c+1)
		areas[c+1] = width * length
		minArea = min(minArea, areas[c+1])
	}

	for level := len(areas) - 1; level > 0; level-- {
		if areas[level] == minArea {
			return level
		}
	}
	return 0
}

// FormatGrouped renders rs with the first level columns grouped.
func FormatGrouped(w io.Writer, rs *store.ResultSet, showHeadings bool, level int) error {
	if rs == nil {
		return nil
	}

	bw := bufio.NewWriter(w)
	widths := ColumnWidths(rs, showHeadings)
	cols := rs.Columns()
	level = max(0, min(level, cols))

	if showHeadings {
		for c, h := range rs.Headers() {
			if c < level {
				bw.WriteString(h)
				bw.WriteByte('\n')
				bw.WriteString(strings.Repeat(Indent, c+1))
				continue
			}
			writeAligned(bw, h, widths[c], c == cols-1)
		}
		bw.WriteByte('\n')
	}

	prev := make([]string, level)
	for r := 0; r < rs.Rows(); r++ {
		for c, value := range rs.Row(r) {
			if c >= level {
				writeAligned(bw, value, widths[c], c == cols-1)
				continue
			}
			if r > 0 && value == prev[c] {
				bw.WriteString(Indent)
				continue
			}
			bw.WriteString(value)
			if c < cols-1 {
				bw.WriteByte('\n')
				bw.WriteString(strings.Repeat(Indent, c+1))
				clear(prev[c:])
			}
			prev[c] = value
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
