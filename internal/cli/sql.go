package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/roach88/ash/internal/format"
	"github.com/roach88/ash/internal/store"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Database     string
	Format       string
	Limit        int
	HideHeadings bool
	Reverse      bool

	// NewPrompt allows overriding the interactive line reader (for testing).
	// If nil, a readline prompt is used.
	NewPrompt func(stdin io.Reader, stdout, stderr io.Writer) (LineReader, error)
}

// LineReader reads one line of input per call and returns io.EOF when
// the user is done.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

const listTablesSQL = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name;"

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	return newSQLCommand(&SQLOptions{RootOptions: rootOpts})
}

func newSQLCommand(opts *SQLOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sql [statement...]",
		Short: "Run ad-hoc SQL against the history database",
		Long: `Run ad-hoc SQL against the history database.

The arguments are joined into one statement. With no arguments an
interactive prompt reads one statement per line; \dt lists the tables,
\f NAME switches the output format and \q quits.

Example:
  ash sql "SELECT count(*) FROM commands"
  ash sql -f table`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQLCommand(opts, args, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Database, "database", "d", "", "a history database to query")
	f.StringVarP(&opts.Format, "format", "f", "", "a format to display results")
	f.IntVarP(&opts.Limit, "limit", "l", 0, "limit the number of rows returned")
	f.BoolVarP(&opts.HideHeadings, "hide-headings", "H", false, "hide column headings from query results")
	f.BoolVarP(&opts.Reverse, "reverse", "R", false, "display results in reverse order")

	return cmd
}

func runSQLCommand(opts *SQLOptions, args []string, cmd *cobra.Command) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if err := opts.resolve(stderr); err != nil {
		return err
	}

	path, err := databasePath(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	f, err := lookupFormat(opts.RootOptions, opts.Format, stderr)
	if err != nil {
		return err
	}

	s, err := openHistory(opts.RootOptions, path)
	if err != nil {
		return err
	}
	defer closeHistory(opts.RootOptions, s)

	ro := resultOptions{Limit: opts.Limit, Reverse: opts.Reverse, HideHeadings: opts.HideHeadings}
	if len(args) > 0 {
		return writeResults(cmd.Context(), s, f, strings.Join(args, " "), ro, stdout)
	}

	newPrompt := opts.NewPrompt
	if newPrompt == nil {
		newPrompt = opts.readlinePrompt
	}
	prompt, err := newPrompt(cmd.InOrStdin(), stdout, stderr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start prompt", err)
	}
	defer prompt.Close()

	return repl(cmd, s, f, ro, prompt)
}

func repl(cmd *cobra.Command, s *store.Store, f format.Formatter, ro resultOptions, prompt LineReader) error {
	stdout := cmd.OutOrStdout()

	for {
		line, err := prompt.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input", err)
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case trimmed == "quit" || trimmed == "exit" || trimmed == `\q`:
			return nil
		case trimmed == `\dt`:
			trimmed = listTablesSQL
		case strings.HasPrefix(trimmed, `\f`):
			name := strings.TrimSpace(trimmed[len(`\f`):])
			next, ok := format.Lookup(name)
			if !ok {
				fmt.Fprintf(stdout, "Unknown format: '%s'\n", name)
				_ = displayNames(stdout, "Format", format.Descriptions())
				continue
			}
			f = next
			continue
		}

		err = writeResults(cmd.Context(), s, f, trimmed, ro, stdout)
		if store.IsUnexpected(err) {
			fmt.Fprintln(stdout, "Error:", err)
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (o *SQLOptions) readlinePrompt(stdin io.Reader, stdout, stderr io.Writer) (LineReader, error) {
	in, ok := stdin.(io.ReadCloser)
	if !ok {
		in = io.NopCloser(stdin)
	}

	cfg := &readline.Config{
		Prompt:          "ash> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           in,
		Stdout:          stdout,
		Stderr:          stderr,
	}
	if home := o.Env.Getenv("HOME"); home != "" {
		dir := filepath.Join(home, ".ash")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			cfg.HistoryFile = filepath.Join(dir, "sql_history")
		}
	}
	return readline.NewEx(cfg)
}
