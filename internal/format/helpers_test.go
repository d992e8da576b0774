package format

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ash/internal/store"
)

func resultSet(t *testing.T, headers []string, data ...[]string) *store.ResultSet {
	t.Helper()
	rs, err := store.NewResultSet(headers, data)
	require.NoError(t, err)
	return rs
}

// historyFixture is a small slice of command history.
func historyFixture(t *testing.T) *store.ResultSet {
	return resultSet(t, []string{"session", "cwd", "command", "rval"},
		[]string{"1", "/home/alice", "ls -la", "0"},
		[]string{"1", "/home/alice", "vim notes.txt", "0"},
		[]string{"1", "/tmp", "make test", "2"},
		[]string{"2", "/home/alice", "git status", "0"},
		[]string{"2", "/home/alice", "git commit -m 'wip'", "0"},
	)
}

// groupedFixture has enough repetition in its leading columns that
// grouping two levels is the smallest layout.
func groupedFixture(t *testing.T) *store.ResultSet {
	return resultSet(t, []string{"session", "cwd", "command"},
		[]string{"1", "/home/alice/src/ash", "git status"},
		[]string{"1", "/home/alice/src/ash", "go build ./..."},
		[]string{"1", "/home/alice/src/ash", "go test ./internal/store"},
		[]string{"1", "/home/alice/src/ash", "vim internal/store/retry.go"},
		[]string{"1", "/home/alice/src/ash", "git diff"},
		[]string{"1", "/var/log", "tail -f syslog"},
		[]string{"1", "/var/log", "less auth.log"},
		[]string{"2", "/home/alice/src/ash", "git pull --rebase"},
		[]string{"2", "/home/alice/src/ash", "make"},
		[]string{"2", "/home/alice/src/ash", "./ash query -q recent"},
	)
}

func render(t *testing.T, f Formatter, rs *store.ResultSet, showHeadings bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, rs, showHeadings))
	return buf.String()
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}
