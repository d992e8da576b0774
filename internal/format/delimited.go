package format

import (
	"bufio"
	"io"

	"github.com/roach88/ash/internal/store"
)

// Delimited writes each cell followed by Delimiter, except the last cell of
// a row. Values are written verbatim.
type Delimited struct {
	name        string
	description string
	Delimiter   string
}

var (
	// CSV separates columns with commas.
	CSV = Delimited{
		name:        "csv",
		description: "Columns are comma separated.",
		Delimiter:   ",",
	}

	// Null separates columns with NUL bytes.
	Null = Delimited{
		name:        "null",
		description: "Columns are NUL separated.",
		Delimiter:   "\x00",
	}
)

func (d Delimited) Name() string        { return d.name }
func (d Delimited) Description() string { return d.description }

func (d Delimited) Format(w io.Writer, rs *store.ResultSet, showHeadings bool) error {
	if rs == nil {
		return nil
	}

	bw := bufio.NewWriter(w)
	writeRow := func(cells []string) {
		for c, cell := range cells {
			bw.WriteString(cell)
			if c+1 < len(cells) {
				bw.WriteString(d.Delimiter)
			}
		}
		bw.WriteByte('\n')
	}

	if showHeadings {
		writeRow(rs.Headers())
	}
	for r := 0; r < rs.Rows(); r++ {
		writeRow(rs.Row(r))
	}
	return bw.Flush()
}
