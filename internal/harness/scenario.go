package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted shell session.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config holds ASH_CFG_ settings, without the prefix. HISTORY_DB is
	// always set by the harness.
	Config map[string]string `yaml:"config,omitempty"`

	// Env holds environment variables present from the first step.
	Env map[string]string `yaml:"env,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final database.
	Assertions []Assertion `yaml:"assertions"`
}

// Step runs one ash subcommand.
type Step struct {
	// Run is the subcommand and its arguments, e.g. [log, -S].
	Run []string `yaml:"run"`

	// Env variables are set before the step and stay set.
	Env map[string]string `yaml:"env,omitempty"`

	// Cwd changes the working directory before the step.
	Cwd string `yaml:"cwd,omitempty"`

	// Advance moves the clock forward before the step (Go duration syntax).
	Advance string `yaml:"advance,omitempty"`

	// Export names an environment variable to set from the step's trimmed
	// stdout, the way the shell hook exports ASH_SESSION_ID.
	Export string `yaml:"export,omitempty"`

	// Expect checks the step's outcome. If nil, the step must exit 0.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Exit is the expected exit code.
	Exit int `yaml:"exit"`

	// Stdout, if set, must equal the step's output exactly.
	Stdout *string `yaml:"stdout,omitempty"`

	// Contains lists substrings the output must include.
	Contains []string `yaml:"contains,omitempty"`
}

// Assertion validates the final database.
type Assertion struct {
	// Type specifies the assertion type:
	// - "row_count": Count rows of a table
	// - "final_state": Find one row and verify expected values
	// - "query_rows": Compare the full result of a query
	Type string `yaml:"type"`

	// Table is the table name (used by row_count and final_state).
	Table string `yaml:"table,omitempty"`

	// Where filters rows by column value (used by row_count and final_state).
	Where map[string]string `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match - only specified columns are validated.
	Expect map[string]string `yaml:"expect,omitempty"`

	// Count is the expected number of rows (used by row_count).
	Count int `yaml:"count,omitempty"`

	// Query is the SQL to run (used by query_rows).
	Query string `yaml:"query,omitempty"`

	// Rows are the expected rows, in order (used by query_rows).
	Rows [][]string `yaml:"rows,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount   = "row_count"
	AssertFinalState = "final_state"
	AssertQueryRows  = "query_rows"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := map[string]string{}
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), s.Name, prev)
		}
		seen[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if len(step.Run) == 0 {
			return fmt.Errorf("steps[%d]: run is required", i)
		}
		if _, ok := subcommands[step.Run[0]]; !ok {
			return fmt.Errorf("steps[%d]: unknown subcommand %q", i, step.Run[0])
		}
		if step.Advance != "" {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return fmt.Errorf("steps[%d]: advance: %w", i, err)
			}
			if d < 0 {
				return fmt.Errorf("steps[%d]: advance must not be negative", i)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRowCount:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for row_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertQueryRows:
		if a.Query == "" {
			return fmt.Errorf("assertions[%d]: query is required for query_rows", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
