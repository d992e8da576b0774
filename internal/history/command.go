package history

import (
	"maps"
	"strconv"
	"strings"

	"github.com/roach88/ash/internal/store"
)

// CommandInput is what the shell hook reports about a finished command.
type CommandInput struct {
	Command string
	Rval    int
	Start   int64
	End     int64
	Number  int
	// Pipes holds the exit code of every pipeline stage, joined by "_".
	Pipes string
}

// Command is a row of the commands table.
type Command struct {
	values map[string]string
}

var _ store.Record = (*Command)(nil)

// NewCommand describes a command run in the session named by
// ASH_SESSION_ID.
//
// A successful cd has already moved the shell, so its cwd is taken from
// OLDPWD to record where it was typed.
func NewCommand(env Env, in CommandInput) *Command {
	var cwd string
	if in.Rval == 0 && strings.HasPrefix(in.Command, "cd") {
		cwd = env.Getenv("OLDPWD")
	} else {
		cwd, _ = env.Cwd()
	}

	return &Command{values: map[string]string{
		"session_id":  strconv.Itoa(envInt(env, "ASH_SESSION_ID")),
		"shell_level": strconv.Itoa(envInt(env, "SHLVL")),
		"command_no":  strconv.Itoa(in.Number),
		"tty":         store.Quote(env.TTY()),
		"euid":        strconv.Itoa(env.EUID()),
		"cwd":         store.Quote(cwd),
		"rval":        strconv.Itoa(in.Rval),
		"start_time":  strconv.FormatInt(in.Start, 10),
		"end_time":    strconv.FormatInt(in.End, 10),
		"duration":    strconv.FormatInt(in.End-in.Start, 10),
		"pipe_cnt":    strconv.Itoa(strings.Count(in.Pipes, "_") + 1),
		"pipe_vals":   store.Quote(in.Pipes),
		"command":     store.Quote(in.Command),
	}}
}

func (c *Command) TableName() string { return CommandsTable }

func (c *Command) Values() map[string]string { return maps.Clone(c.values) }

// envInt reads an integer variable; unset or malformed values are 0.
func envInt(env Env, key string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(env.Getenv(key)))
	return n
}
