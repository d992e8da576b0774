package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/roach88/ash/internal/format"
	"github.com/roach88/ash/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Unknown query or format, usage shown
	ExitCommandError = 2 // Command error (no database configured, bad config file, etc.)
)

// ExitError represents an error with a specific exit code.
// An empty Message exits with Code without printing anything.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// displayNames writes a two column Name/Description listing sorted by
// name, aligned the same way query results are.
func displayNames(w io.Writer, heading string, descriptions map[string]string) error {
	names := make([]string, 0, len(descriptions))
	for name := range descriptions {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, descriptions[name]}
	}

	rs, err := store.NewResultSet([]string{heading, "Description"}, rows)
	if err != nil {
		return err
	}
	return format.Aligned{}.Format(w, rs, true)
}
