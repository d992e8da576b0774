package cli

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ash/internal/config"
)

func TestLog_GetSessionIDCreatesSession(t *testing.T) {
	opts, _, db := testRoot(t)

	stdout, _, err := execute(t, NewLogCommand(opts), "--get-session-id")
	require.NoError(t, err)
	assert.Equal(t, "1\n", stdout)

	rs := queryDB(t, db, "SELECT id, hostname, tty, duration FROM sessions")
	require.NotNil(t, rs)
	assert.Equal(t, [][]string{{"1", "wonderland", "pts/3", ""}}, [][]string{rs.Row(0)})
}

func TestLog_GetSessionIDReusesOpenSession(t *testing.T) {
	opts, env, db := testRoot(t)

	_, _, err := execute(t, NewLogCommand(opts), "-S")
	require.NoError(t, err)

	env.Setenv("ASH_SESSION_ID", "1")
	stdout, stderr, err := execute(t, NewLogCommand(opts), "-S")
	require.NoError(t, err)
	assert.Equal(t, "1\n", stdout)
	assert.Empty(t, stderr)

	rs := queryDB(t, db, "SELECT count(*) FROM sessions")
	assert.Equal(t, "1", rs.Cell(0, 0))
}

func TestLog_GetSessionIDReplacesUnknownSession(t *testing.T) {
	opts, env, _ := testRoot(t)
	env.Setenv("ASH_SESSION_ID", "99")

	stdout, stderr, err := execute(t, NewLogCommand(opts), "-S")
	require.NoError(t, err)
	assert.Equal(t, "1\n", stdout)
	assert.Contains(t, stderr, "session_id(99) not found, creating new session")
}

func TestLog_RecordsCommand(t *testing.T) {
	opts, env, db := testRoot(t)
	env.Setenv("ASH_SESSION_ID", "3")
	env.Setenv("SHLVL", "2")
	env.Dir = "/srv/app"

	_, _, err := execute(t, NewLogCommand(opts),
		"-c", "make test | tee log", "-e", "2", "-s", "100", "-f", "105", "-n", "7", "-p", "2_0")
	require.NoError(t, err)

	rs := queryDB(t, db, "SELECT session_id, shell_level, command_no, cwd, rval, duration, pipe_cnt, pipe_vals, command FROM commands")
	require.NotNil(t, rs)
	assert.Equal(t, []string{"3", "2", "7", "/srv/app", "2", "5", "2", "2_0", "make test | tee log"}, rs.Row(0))
}

func TestLog_ExitCodeIsPassedThrough(t *testing.T) {
	opts, env, db := testRoot(t)
	env.Setenv("ASH_SESSION_ID", "1")

	_, _, err := execute(t, NewLogCommand(opts), "-c", "false", "-e", "1", "-x", "1")
	require.Error(t, err)
	assert.Equal(t, 1, GetExitCode(err))
	assert.Empty(t, err.Error())

	rs := queryDB(t, db, "SELECT command FROM commands")
	require.NotNil(t, rs)
	assert.Equal(t, "false", rs.Cell(0, 0))
}

func TestLog_DuplicateCommandNumberIsIgnored(t *testing.T) {
	opts, env, db := testRoot(t)
	env.Setenv("ASH_SESSION_ID", "1")

	for _, command := range []string{"first", "second"} {
		_, _, err := execute(t, NewLogCommand(opts), "-c", command, "-n", "12")
		require.NoError(t, err)
	}

	rs := queryDB(t, db, "SELECT command FROM commands")
	require.Equal(t, 1, rs.Rows())
	assert.Equal(t, "first", rs.Cell(0, 0))
}

func TestLog_EndSession(t *testing.T) {
	opts, env, db := testRoot(t)

	_, _, err := execute(t, NewLogCommand(opts), "-S")
	require.NoError(t, err)

	env.Setenv("ASH_SESSION_ID", "1")
	env.Time = env.Time.Add(10 * time.Minute)
	_, _, err = execute(t, NewLogCommand(opts), "--end-session")
	require.NoError(t, err)

	rs := queryDB(t, db, "SELECT duration FROM sessions WHERE id = 1")
	assert.Equal(t, "600", rs.Cell(0, 0))

	// A closed session is not reused.
	stdout, stderr, err := execute(t, NewLogCommand(opts), "-S")
	require.NoError(t, err)
	assert.Equal(t, "2\n", stdout)
	assert.Contains(t, stderr, "session_id(1) not found")
}

func TestLog_EndSessionWithoutID(t *testing.T) {
	opts, _, _ := testRoot(t)

	_, _, err := execute(t, NewLogCommand(opts), "-E")
	assert.NoError(t, err)
}

func TestLog_Disabled(t *testing.T) {
	opts, env, db := testRoot(t)
	env.Setenv("ASH_DISABLED", "1")

	_, _, err := execute(t, NewLogCommand(opts), "-S", "-c", "ls", "-x", "3")
	require.Error(t, err)
	assert.Equal(t, 3, GetExitCode(err))

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLog_Alert(t *testing.T) {
	opts, _, _ := testRoot(t)

	_, stderr, err := execute(t, NewLogCommand(opts), "-a", "ash is now recording")
	require.NoError(t, err)
	assert.Equal(t, "ash is now recording\n", stderr)
}

func TestLog_NoFlagsShowsUsage(t *testing.T) {
	opts, _, _ := testRoot(t)

	stdout, stderr, err := execute(t, NewLogCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "not intended to be executed manually")
	assert.Contains(t, stdout+stderr, "Usage:")
}

func TestLog_NoFlagsHiddenUsage(t *testing.T) {
	opts, _, db := testRoot(t)
	opts.Config = config.Map{config.KeyHistoryDB: db, config.KeyHideUsage: "true"}

	stdout, stderr, err := execute(t, NewLogCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestLog_MissingDatabase(t *testing.T) {
	opts, _, _ := testRoot(t)
	opts.Config = config.Map{}

	_, _, err := execute(t, NewLogCommand(opts), "-S")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "ASH_CFG_HISTORY_DB")
}
