package format

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"aligned", "auto", "csv", "null", "table", "yaml"} {
		t.Run(name, func(t *testing.T) {
			f, ok := Lookup(name)
			require.True(t, ok)
			assert.Equal(t, name, f.Name())
			assert.NotEmpty(t, f.Description())
		})
	}

	_, ok := Lookup("html")
	assert.False(t, ok)
}

func TestNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"aligned", "auto", "csv", "null", "table", "yaml"}, Names())
}

func TestDescriptions(t *testing.T) {
	desc := Descriptions()
	assert.Len(t, desc, len(Names()))
	assert.Equal(t, "Automatically group redundant values.", desc["auto"])
}

func TestColumnWidths(t *testing.T) {
	rs := historyFixture(t)

	assert.Equal(t, []int{11, 15, 23, 8}, ColumnWidths(rs, true))
	assert.Equal(t, []int{5, 15, 23, 5}, ColumnWidths(rs, false))
}

func TestColumnWidths_CapsCellsNotHeadings(t *testing.T) {
	long := strings.Repeat("x", 200)
	rs := resultSet(t, []string{"c", strings.Repeat("h", 90)}, []string{long, "short"})

	assert.Equal(t, []int{MaxCellWidth, Padding + 90}, ColumnWidths(rs, true))
	assert.Equal(t, []int{MaxCellWidth, Padding + 5}, ColumnWidths(rs, false))
}

func TestColumnWidths_CountsRunes(t *testing.T) {
	rs := resultSet(t, []string{"w"}, []string{"h\u00e9llo"})
	assert.Equal(t, []int{9}, ColumnWidths(rs, false))
}

func TestColumnWidths_Nil(t *testing.T) {
	assert.Nil(t, ColumnWidths(nil, true))
}

func TestFormatters_NilResultSetWritesNothing(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			f, _ := Lookup(name)
			var buf bytes.Buffer
			require.NoError(t, f.Format(&buf, nil, true))
			assert.Empty(t, buf.String())
		})
	}
}

func TestAligned_Golden(t *testing.T) {
	assertGolden(t, "aligned_history", render(t, Aligned{}, historyFixture(t), true))
}

func TestAligned_NoHeadingsGolden(t *testing.T) {
	assertGolden(t, "aligned_history_no_headings", render(t, Aligned{}, historyFixture(t), false))
}

func TestAligned_NoTrailingPadding(t *testing.T) {
	out := render(t, Aligned{}, historyFixture(t), true)
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.Equal(t, strings.TrimRight(line, " "), line)
	}
}

func TestAligned_OverlongCellIsNotTruncated(t *testing.T) {
	long := strings.Repeat("y", 100)
	out := render(t, Aligned{}, resultSet(t, []string{"a", "b"}, []string{long, "z"}), false)
	assert.Equal(t, long+"z\n", out)
}

func TestCSV_Golden(t *testing.T) {
	assertGolden(t, "csv_history", render(t, CSV, historyFixture(t), true))
}

func TestNull_Golden(t *testing.T) {
	assertGolden(t, "null_history", render(t, Null, historyFixture(t), true))
}

func TestDelimited_NoHeadings(t *testing.T) {
	rs := resultSet(t, []string{"a", "b"}, []string{"1", ""}, []string{"", "2"})
	assert.Equal(t, "1,\n,2\n", render(t, CSV, rs, false))
}

func TestDelimited_SingleColumnHasNoDelimiter(t *testing.T) {
	rs := resultSet(t, []string{"a"}, []string{"1"})
	assert.Equal(t, "a\n1\n", render(t, CSV, rs, true))
}

func TestTable_ContainsCells(t *testing.T) {
	out := render(t, Table{}, historyFixture(t), true)

	assert.Contains(t, out, "session")
	assert.Contains(t, out, "git commit -m 'wip'")
	assert.Contains(t, out, "+")
	assert.Equal(t, 1, strings.Count(out, "/tmp"))
}

func TestTable_NoHeadings(t *testing.T) {
	out := render(t, Table{}, historyFixture(t), false)
	assert.NotContains(t, out, "session")
	assert.Contains(t, out, "vim notes.txt")
}

func TestYAML_WithHeadings(t *testing.T) {
	out := render(t, YAML{}, historyFixture(t), true)

	var rows []map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 5)
	assert.Equal(t, map[string]string{
		"session": "2",
		"cwd":     "/home/alice",
		"command": "git commit -m 'wip'",
		"rval":    "0",
	}, rows[4])

	// Column order is kept.
	first := strings.SplitN(out, "\n", 5)
	assert.Equal(t, "- session: \"1\"", first[0])
	assert.Equal(t, "  cwd: /home/alice", first[1])
}

func TestYAML_WithoutHeadings(t *testing.T) {
	rs := resultSet(t, []string{"a", "b"}, []string{"1", "x"})
	out := render(t, YAML{}, rs, false)

	var rows [][]string
	require.NoError(t, yaml.Unmarshal([]byte(out), &rows))
	assert.Equal(t, [][]string{{"1", "x"}}, rows)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestFormatters_ReportWriteErrors(t *testing.T) {
	for _, f := range []Formatter{Aligned{}, Grouped{}, CSV, YAML{}} {
		t.Run(f.Name(), func(t *testing.T) {
			err := f.Format(failingWriter{}, historyFixture(t), true)
			require.Error(t, err)
		})
	}
}
