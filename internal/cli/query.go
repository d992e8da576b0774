package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ash/internal/config"
	"github.com/roach88/ash/internal/format"
	"github.com/roach88/ash/internal/queries"
	"github.com/roach88/ash/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database     string
	Format       string
	Limit        int
	PrintQuery   string
	Query        string
	ListFormats  bool
	HideHeadings bool
	ListQueries  bool
	Reverse      bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a saved query against the history database",
		Long: `Run a saved query against the history database.

Saved queries are built in, and may be added to or replaced from
ASH_CFG_SYSTEM_QUERY_FILE and ~/.ash/queries.yaml (or
ASH_CFG_USER_QUERY_FILE). Shell variables in a query, written ${NAME} or
${NAME:-default}, are expanded before it runs.

With no flags at all the query named by ASH_CFG_DEFAULT_QUERY is run.

Example:
  ash query -Q
  ash query -q SESSION -f auto
  ash query -q POPULAR -l 10 -H -f csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Database, "database", "d", "", "a history database to query")
	f.StringVarP(&opts.Format, "format", "f", "", "a format to display results")
	f.IntVarP(&opts.Limit, "limit", "l", 0, "limit the number of rows returned")
	f.StringVarP(&opts.PrintQuery, "print-query", "p", "", "print the query SQL")
	f.StringVarP(&opts.Query, "query", "q", "", "the name of the saved query to execute")
	f.BoolVarP(&opts.ListFormats, "list-formats", "F", false, "display all available formats")
	f.BoolVarP(&opts.HideHeadings, "hide-headings", "H", false, "hide column headings from query results")
	f.BoolVarP(&opts.ListQueries, "list-queries", "Q", false, "display all saved queries")
	f.BoolVarP(&opts.Reverse, "reverse", "R", false, "display results in reverse order")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if err := opts.resolve(stderr); err != nil {
		return err
	}

	if cmd.Flags().NFlag() == 0 {
		opts.Query = opts.Config.GetString(config.KeyDefaultQuery, "")
		if opts.Query == "" {
			if !opts.Config.Sets(config.KeyHideUsage, false) {
				_ = cmd.Usage()
			}
			return NewExitError(ExitFailure, "")
		}
	}

	if opts.ListFormats {
		return displayNames(stdout, "Format", format.Descriptions())
	}

	set, err := queries.Load(opts.Config, opts.Env.Getenv("HOME"))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load saved queries", err)
	}

	if opts.ListQueries {
		return displayNames(stdout, "Query", set.Descriptions())
	}

	if opts.PrintQuery != "" {
		return printQuery(opts, set, stdout)
	}

	if opts.Query == "" {
		return NewExitError(ExitCommandError, "one of --query, --print-query, --list-queries or --list-formats is required")
	}

	_, sql, ok := set.Get(opts.Query, opts.lookupEnv)
	if !ok {
		return queryNotFound(stdout, opts.Query, set)
	}
	ro := resultOptions{Limit: opts.Limit, Reverse: opts.Reverse, HideHeadings: opts.HideHeadings}
	return execute(cmd.Context(), opts.RootOptions, opts.Database, opts.Format, sql, ro, stdout, stderr)
}

func printQuery(opts *QueryOptions, set *queries.Set, w io.Writer) error {
	raw, sql, ok := set.Get(opts.PrintQuery, opts.lookupEnv)
	if !ok {
		return queryNotFound(w, opts.PrintQuery, set)
	}

	raw, sql = strings.TrimSpace(raw), strings.TrimSpace(sql)
	fmt.Fprintf(w, "Query: %s\n", opts.PrintQuery)
	if raw != sql {
		fmt.Fprintf(w, "Template Form:\n%s\nActual SQL:\n", raw)
	}
	fmt.Fprintln(w, sql)
	return nil
}

func queryNotFound(w io.Writer, name string, set *queries.Set) error {
	fmt.Fprintf(w, "Query not found: %s\nAvailable:\n", name)
	if err := displayNames(w, "Query", set.Descriptions()); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "")
}

// lookupEnv reads shell variables for query expansion. Empty and unset
// variables are treated alike.
func (o *RootOptions) lookupEnv(key string) (string, bool) {
	v := o.Env.Getenv(key)
	return v, v != ""
}

// resultOptions controls how a statement's rows are fetched and shown.
type resultOptions struct {
	Limit        int
	Reverse      bool
	HideHeadings bool
}

// execute runs sql against the database and writes the rows with the
// named formatter.
func execute(ctx context.Context, opts *RootOptions, database, formatName, sql string, ro resultOptions, stdout, stderr io.Writer) error {
	path, err := databasePath(opts, database)
	if err != nil {
		return err
	}
	f, err := lookupFormat(opts, formatName, stderr)
	if err != nil {
		return err
	}

	s, err := openHistory(opts, path)
	if err != nil {
		return err
	}
	defer closeHistory(opts, s)

	return writeResults(ctx, s, f, sql, ro, stdout)
}

func writeResults(ctx context.Context, s *store.Store, f format.Formatter, sql string, ro resultOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rs, err := s.Query(ctx, sql, ro.Limit, ro.Reverse)
	if err != nil {
		return err
	}
	return f.Format(w, rs, !ro.HideHeadings)
}

// databasePath returns database, or HISTORY_DB when it is empty.
func databasePath(opts *RootOptions, database string) (string, error) {
	if database != "" {
		return database, nil
	}
	if path := opts.Config.GetString(config.KeyHistoryDB, ""); path != "" {
		return path, nil
	}
	return "", NewExitError(ExitCommandError, "expected either --database or ASH_CFG_HISTORY_DB to be defined")
}

// lookupFormat returns the named formatter, or the DEFAULT_FORMAT one
// (aligned unless configured) when name is empty. An unknown name lists
// the available formats on stderr.
func lookupFormat(opts *RootOptions, name string, stderr io.Writer) (format.Formatter, error) {
	if name == "" {
		name = opts.Config.GetString(config.KeyDefaultFormat, "aligned")
	}
	f, ok := format.Lookup(name)
	if !ok {
		fmt.Fprintf(stderr, "\nUnknown format: '%s'\n\n", name)
		_ = displayNames(stderr, "Format", format.Descriptions())
		return nil, NewExitError(ExitFailure, "")
	}
	return f, nil
}
