package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the ash release, overridden at link time with
// -ldflags "-X github.com/roach88/ash/internal/cli.Version=...".
var Version = "0.8.0-dev"

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the ash version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}
