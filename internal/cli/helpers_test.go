package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ash/internal/config"
	"github.com/roach88/ash/internal/history"
	"github.com/roach88/ash/internal/history/historytest"
	"github.com/roach88/ash/internal/logging"
	"github.com/roach88/ash/internal/store"
)

// testRoot returns options wired to a fake environment and a fresh
// database path that nothing has created yet.
func testRoot(t *testing.T) (*RootOptions, *historytest.Env, string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "history.db")
	env := historytest.NewEnv()
	opts := &RootOptions{
		Env:    env,
		Config: config.Map{config.KeyHistoryDB: db},
		Logger: logging.Discard(),
	}
	return opts, env, db
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if args == nil {
		// cobra falls back to os.Args when args is nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func openDB(t *testing.T, path string) *store.Store {
	t.Helper()
	reg, err := history.NewRegistry()
	require.NoError(t, err)
	s, err := store.Open(path, reg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func queryDB(t *testing.T, path, sql string) *store.ResultSet {
	t.Helper()
	rs, err := openDB(t, path).Query(context.Background(), sql, 0, false)
	require.NoError(t, err)
	return rs
}

// seedCommands records one command per entry in session 1.
func seedCommands(t *testing.T, path string, env *historytest.Env, commands ...history.CommandInput) {
	t.Helper()
	env.Setenv("ASH_SESSION_ID", "1")
	env.Setenv("SHLVL", "1")
	s := openDB(t, path)
	for _, in := range commands {
		_, err := s.Insert(context.Background(), history.NewCommand(env, in))
		require.NoError(t, err)
	}
}
