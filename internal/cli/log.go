package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/ash/internal/config"
	"github.com/roach88/ash/internal/history"
	"github.com/roach88/ash/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Alert         string
	Command       string
	CommandExit   int
	PipeStatus    string
	CommandStart  int64
	CommandFinish int64
	CommandNumber int
	Exit          int
	GetSessionID  bool
	EndSession    bool
}

// commandFlags describe the command being logged; setting any of them
// records a command row.
var commandFlags = []string{
	"command", "command-exit", "command-pipe-status",
	"command-start", "command-finish", "command-number",
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record shell sessions and commands (called by shell hooks)",
		Long: `Record shell sessions and commands in the history database.

This command is not intended to be executed manually: the shell hooks
installed by ash call it before the first prompt, after every command,
and when the shell exits. The database is named by ASH_CFG_HISTORY_DB.
When ASH_DISABLED is set nothing is recorded.

Example:
  ash log --get-session-id
  ash log -c "$cmd" -e $rval -s $start -f $(date +%s) -n $num -p "$pipes" -x $rval
  ash log --end-session`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Alert, "alert", "a", "", "a message to display to the user")
	f.StringVarP(&opts.Command, "command", "c", "", "the command to log")
	f.IntVarP(&opts.CommandExit, "command-exit", "e", 0, "the exit code of the command to log")
	f.StringVarP(&opts.PipeStatus, "command-pipe-status", "p", "", "the pipe states of the command to log")
	f.Int64VarP(&opts.CommandStart, "command-start", "s", 0, "the timestamp when the command started")
	f.Int64VarP(&opts.CommandFinish, "command-finish", "f", 0, "the timestamp when the command stopped")
	f.IntVarP(&opts.CommandNumber, "command-number", "n", 0, "the builtin shell history command number")
	f.IntVarP(&opts.Exit, "exit", "x", 0, "the exit code to use when exiting")
	f.BoolVarP(&opts.GetSessionID, "get-session-id", "S", false, "emit the session id, creating a session if needed")
	f.BoolVarP(&opts.EndSession, "end-session", "E", false, "end the current session")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if err := opts.resolve(stderr); err != nil {
		return err
	}

	// The caller's exit status is passed through whatever happens below.
	var done error
	if opts.Exit != 0 {
		done = &ExitError{Code: opts.Exit}
	}

	if opts.Env.Getenv("ASH_DISABLED") != "" {
		return done
	}

	opts.Logger.Debug("ash log", "flags", visitedFlags(cmd.Flags()))

	if cmd.Flags().NFlag() == 0 {
		if !opts.Config.Sets(config.KeyHideUsage, false) {
			fmt.Fprint(stderr, "\nThis program is not intended to be executed manually.\n\n")
			_ = cmd.Usage()
		}
		return NewExitError(ExitFailure, "")
	}

	if opts.Alert != "" {
		fmt.Fprintln(stderr, opts.Alert)
	}

	dbPath := opts.Config.GetString(config.KeyHistoryDB, "")
	if dbPath == "" {
		return NewExitError(ExitCommandError, "expected ASH_CFG_HISTORY_DB to be defined")
	}

	s, err := openHistory(opts.RootOptions, dbPath)
	if err != nil {
		return err
	}
	defer closeHistory(opts.RootOptions, s)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.GetSessionID {
		id, err := sessionID(ctx, opts, s, stderr)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, id)
	}

	if anyChanged(cmd.Flags(), commandFlags) {
		rec := history.NewCommand(opts.Env, history.CommandInput{
			Command: opts.Command,
			Rval:    opts.CommandExit,
			Start:   opts.CommandStart,
			End:     opts.CommandFinish,
			Number:  opts.CommandNumber,
			Pipes:   opts.PipeStatus,
		})
		if _, err := s.Insert(ctx, rec); err != nil {
			return err
		}
	}

	if opts.EndSession {
		if err := endSession(ctx, opts, s); err != nil {
			return err
		}
	}

	return done
}

// sessionID returns ASH_SESSION_ID when it names an open session, and
// otherwise inserts a new session and returns its id.
func sessionID(ctx context.Context, opts *LogOptions, s *store.Store, stderr io.Writer) (int64, error) {
	if raw := opts.Env.Getenv("ASH_SESSION_ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			q := fmt.Sprintf("select count(*) as session_cnt from sessions where id = %d and duration is null;", id)
			rs, err := s.Query(ctx, q, 0, false)
			if err != nil {
				return 0, err
			}
			if rs != nil && rs.Cell(0, 0) == "1" {
				return id, nil
			}
		}
		fmt.Fprintf(stderr, "ERROR: session_id(%s) not found, creating new session.\n", raw)
	}

	id, err := s.Insert(ctx, history.NewSession(opts.Env, opts.Config))
	if err != nil {
		return 0, err
	}
	opts.Logger.Debug("session started", "session_id", id)
	return id, nil
}

func endSession(ctx context.Context, opts *LogOptions, s *store.Store) error {
	raw := opts.Env.Getenv("ASH_SESSION_ID")
	if raw == "" {
		opts.Logger.Error("can't end the current session: ASH_SESSION_ID undefined")
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		opts.Logger.Error("can't end the current session: malformed ASH_SESSION_ID", "value", raw)
		return nil
	}
	return s.Exec(ctx, history.CloseSessionSQL(id, opts.Env.Now()))
}

func anyChanged(flags *pflag.FlagSet, names []string) bool {
	for _, name := range names {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

func visitedFlags(flags *pflag.FlagSet) string {
	var set []string
	flags.Visit(func(f *pflag.Flag) {
		set = append(set, f.Name+"="+strconv.Quote(f.Value.String()))
	})
	return strings.Join(set, " ")
}
