package harness

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ash/internal/cli"
	"github.com/roach88/ash/internal/config"
	"github.com/roach88/ash/internal/history"
	"github.com/roach88/ash/internal/history/historytest"
	"github.com/roach88/ash/internal/logging"
	"github.com/roach88/ash/internal/store"
)

// subcommands maps the first word of a step to the command it runs.
var subcommands = map[string]func(*cli.RootOptions) *cobra.Command{
	"log":   cli.NewLogCommand,
	"query": cli.NewQueryCommand,
	"sql":   cli.NewSQLCommand,
}

// Harness runs one scenario against its own database and environment.
type Harness struct {
	env    *historytest.Env
	config config.Map
	dbPath string
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh database in a temporary directory.
// The fake environment keeps the results reproducible.
//
// Execution flow:
// 1. Create a temporary directory and database path
// 2. Apply the scenario's config and env
// 3. Run each step, checking its expect clause
// 4. Open the database and evaluate assertions
//
// An error is returned only when the scenario could not be run at all;
// failed expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for the assertion queries.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "ash-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	h := newHarness(scenario, filepath.Join(dir, "history.db"))
	result := NewResult()

	for i, step := range scenario.Steps {
		sr, err := h.runStep(step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.AddStep(sr)
		checkExpect(result, i, step, sr)
	}

	reg, err := history.NewRegistry()
	if err != nil {
		return nil, err
	}
	s, err := store.Open(h.dbPath, reg, store.WithConfig(h.config), store.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	defer s.Close()

	for i, assertion := range scenario.Assertions {
		if err := evaluateAssertion(ctx, s, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return result, nil
}

func newHarness(scenario *Scenario, dbPath string) *Harness {
	env := historytest.NewEnv()
	env.Setenv("PWD", env.Dir)
	for k, v := range scenario.Env {
		env.Setenv(k, v)
	}

	cfg := config.Map{}
	for k, v := range scenario.Config {
		cfg[strings.TrimPrefix(k, config.Prefix)] = v
	}
	cfg[config.KeyHistoryDB] = dbPath

	return &Harness{
		env:    env,
		config: cfg,
		dbPath: dbPath,
		logger: logging.Discard(),
	}
}

// runStep applies a step's environment changes and runs its command.
// Each step gets fresh command state, as a new process would.
func (h *Harness) runStep(step Step) (StepResult, error) {
	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return StepResult{}, err
		}
		h.env.Time = h.env.Time.Add(d)
	}
	if step.Cwd != "" && step.Cwd != h.env.Dir {
		h.env.Setenv("OLDPWD", h.env.Dir)
		h.env.Setenv("PWD", step.Cwd)
		h.env.Dir = step.Cwd
	}
	for k, v := range step.Env {
		h.env.Setenv(k, v)
	}

	newCommand, ok := subcommands[step.Run[0]]
	if !ok {
		return StepResult{}, fmt.Errorf("unknown subcommand %q", step.Run[0])
	}
	opts := &cli.RootOptions{Env: h.env, Config: h.config, Logger: h.logger}
	cmd := newCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{}, step.Run[1:]...))

	err := cmd.Execute()
	if err != nil && err.Error() != "" {
		fmt.Fprintln(&stderr, "ash:", err.Error())
	}

	sr := StepResult{
		Args:   step.Run,
		Exit:   cli.GetExitCode(err),
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if step.Export != "" {
		h.env.Setenv(step.Export, strings.TrimSpace(sr.Stdout))
	}
	return sr, nil
}

// checkExpect records every way sr differs from the step's expect clause.
func checkExpect(result *Result, index int, step Step, sr StepResult) {
	want := Expect{}
	if step.Expect != nil {
		want = *step.Expect
	}

	if sr.Exit != want.Exit {
		result.AddError(fmt.Sprintf("steps[%d]: exit = %d, want %d (stderr: %q)",
			index, sr.Exit, want.Exit, strings.TrimSpace(sr.Stderr)))
	}
	if want.Stdout != nil && sr.Stdout != *want.Stdout {
		result.AddError(fmt.Sprintf("steps[%d]: stdout = %q, want %q", index, sr.Stdout, *want.Stdout))
	}
	for _, sub := range want.Contains {
		if !strings.Contains(sr.Stdout, sub) {
			result.AddError(fmt.Sprintf("steps[%d]: stdout %q does not contain %q", index, sr.Stdout, sub))
		}
	}
}
