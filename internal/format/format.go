package format

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/roach88/ash/internal/store"
)

const (
	// Padding is the space between aligned columns, and one level of
	// indent in grouped output.
	Padding = 4

	// MaxCellWidth caps how wide a single cell can make its column.
	MaxCellWidth = 80
)

// Indent is one level of grouped-output indentation.
var Indent = strings.Repeat(" ", Padding)

// Formatter writes a result set to w.
type Formatter interface {
	Name() string
	Description() string
	Format(w io.Writer, rs *store.ResultSet, showHeadings bool) error
}

var formatters = func() map[string]Formatter {
	m := map[string]Formatter{}
	for _, f := range []Formatter{
		Aligned{},
		Grouped{},
		CSV,
		Null,
		Table{},
		YAML{},
	} {
		m[f.Name()] = f
	}
	return m
}()

// Lookup returns the formatter registered under name.
func Lookup(name string) (Formatter, bool) {
	f, ok := formatters[name]
	return f, ok
}

// Names returns every formatter name, sorted.
func Names() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptions maps every formatter name to its description.
func Descriptions() map[string]string {
	desc := make(map[string]string, len(formatters))
	for name, f := range formatters {
		desc[name] = f.Description()
	}
	return desc
}

// ColumnWidths returns the aligned width of each column: Padding plus the
// longest value in the column. Headings count only when shown and are not
// capped; cells count up to MaxCellWidth including the padding.
func ColumnWidths(rs *store.ResultSet, showHeadings bool) []int {
	if rs == nil {
		return nil
	}

	widths := make([]int, rs.Columns())
	for c, h := range rs.Headers() {
		widths[c] = Padding
		if showHeadings {
			widths[c] += textWidth(h)
		}
	}

	for r := 0; r < rs.Rows(); r++ {
		for c, cell := range rs.Row(r) {
			widths[c] = max(widths[c], min(MaxCellWidth, Padding+textWidth(cell)))
		}
	}
	return widths
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s)
}

// writeAligned writes s left-justified to width, or bare when last is set.
func writeAligned(w *bufio.Writer, s string, width int, last bool) {
	w.WriteString(s)
	if last {
		return
	}
	if pad := width - textWidth(s); pad > 0 {
		w.WriteString(strings.Repeat(" ", pad))
	}
}
