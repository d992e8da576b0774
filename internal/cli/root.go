package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/ash/internal/config"
	"github.com/roach88/ash/internal/history"
	"github.com/roach88/ash/internal/logging"
	"github.com/roach88/ash/internal/store"
)

// RootOptions holds global flags and the process-wide collaborators every
// command shares. Config and Logger are resolved on first use unless a
// caller has set them.
type RootOptions struct {
	Verbose    bool
	ConfigFile string

	Env    history.Env
	Config config.Provider
	Logger *slog.Logger

	logCloser io.Closer
}

// NewRootCommand creates the root command for the ash CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Env: history.System{}})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ash",
		Short: "ash - advanced shell history",
		Long: `Advanced shell history keeps every command you run in a SQLite database,
together with the session, directory, exit status and timing it ran with.

Shell hooks call 'ash log'; 'ash query' runs saved queries against the
history and 'ash sql' runs ad-hoc SQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML file of ASH_CFG_ settings (environment wins)")

	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// resolve loads configuration and builds the logger, once. Every command
// calls it before doing any work.
func (o *RootOptions) resolve(stderr io.Writer) error {
	if o.Env == nil {
		o.Env = history.System{}
	}

	if o.Config == nil {
		layers := config.Layered{config.Env()}
		if o.ConfigFile != "" {
			file, err := config.LoadFile(o.ConfigFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			layers = append(layers, file)
		}
		o.Config = layers
	}

	if o.Logger == nil {
		logger, closer, err := logging.FromConfig(o.Config, stderr, o.Verbose)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to set up logging", err)
		}
		o.Logger, o.logCloser = logger, closer
	}
	return nil
}

// Close releases the log file, if one was opened.
func (o *RootOptions) Close() error {
	if o.logCloser == nil {
		return nil
	}
	err := o.logCloser.Close()
	o.logCloser = nil
	return err
}

// Execute runs ash with args and returns the process exit code.
//
// Store failures are fatal: they are logged and the process exits without
// returning.
func Execute(args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{Env: history.System{}}
	defer opts.Close()

	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		logger := opts.Logger
		if logger == nil {
			logger = logging.New(stderr, logging.DefaultLevel)
		}
		logging.Fatal(logger, "history database failure", "code", storeErr.Code, "error", err)
	}

	if msg := err.Error(); msg != "" {
		fmt.Fprintln(stderr, "ash:", msg)
	}
	return GetExitCode(err)
}
