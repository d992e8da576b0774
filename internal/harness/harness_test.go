package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Len(t, result.Transcript, len(s.Steps))
		})
	}
}

func TestRun_ExportsSessionID(t *testing.T) {
	scenario := &Scenario{
		Name:        "export",
		Description: "a second -S reuses the exported session",
		Steps: []Step{
			{Run: []string{"log", "-S"}, Export: "ASH_SESSION_ID"},
			{Run: []string{"log", "-S"}},
		},
		Assertions: []Assertion{{Type: AssertRowCount, Table: "sessions", Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "1\n", result.Transcript[0].Stdout)
	assert.Equal(t, "1\n", result.Transcript[1].Stdout)
}

func TestRun_ClosedSessionStartsNewOne(t *testing.T) {
	scenario := &Scenario{
		Name:        "reopen",
		Description: "an ended session is not reused",
		Steps: []Step{
			{Run: []string{"log", "-S"}, Export: "ASH_SESSION_ID"},
			{Run: []string{"log", "-E"}},
			{Run: []string{"log", "-S"}},
		},
		Assertions: []Assertion{{Type: AssertRowCount, Table: "sessions", Count: 2}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "2\n", result.Transcript[2].Stdout)
	assert.Contains(t, result.Transcript[2].Stderr, "ERROR: session_id(1) not found, creating new session.")
}

func TestRun_ConfigIsApplied(t *testing.T) {
	scenario := &Scenario{
		Name:        "config",
		Description: "DEFAULT_QUERY runs when query has no flags",
		Config: map[string]string{
			"ASH_CFG_DEFAULT_QUERY":  "SESSION",
			"ASH_CFG_DEFAULT_FORMAT": "csv",
		},
		Env: map[string]string{"ASH_SESSION_ID": "1"},
		Steps: []Step{
			{Run: []string{"log", "-c", "pwd", "-n", "7"}},
			{Run: []string{"query"}},
		},
		Assertions: []Assertion{{Type: AssertRowCount, Table: "commands", Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "command_no,rval,duration,command\n7,0,0,pwd\n", result.Transcript[1].Stdout)
}

func TestRun_SQLStep(t *testing.T) {
	stdout := "n\n3\n"
	scenario := &Scenario{
		Name:        "sql",
		Description: "sql runs its arguments once",
		Steps: []Step{
			{
				Run:    []string{"sql", "-f", "csv", "SELECT 1 + 2 AS n"},
				Expect: &Expect{Stdout: &stdout},
			},
		},
		Assertions: []Assertion{{Type: AssertRowCount, Table: "commands", Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	stdout := "42\n"
	scenario := &Scenario{
		Name:        "failing",
		Description: "every kind of expectation fails",
		Steps: []Step{
			{
				Run:    []string{"log", "-S"},
				Expect: &Expect{Exit: 3, Stdout: &stdout, Contains: []string{"session"}},
			},
		},
		Assertions: []Assertion{
			{Type: AssertRowCount, Table: "sessions", Count: 2},
			{Type: AssertFinalState, Table: "sessions", Where: map[string]string{"id": "1"}, Expect: map[string]string{"tty": "pts/9"}},
			{Type: AssertFinalState, Table: "sessions", Where: map[string]string{"id": "7"}, Expect: map[string]string{"tty": "pts/3"}},
			{Type: AssertQueryRows, Query: "SELECT id FROM sessions", Rows: [][]string{{"1"}, {"2"}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)

	joined := strings.Join(result.Errors, "\n")
	assert.Contains(t, joined, "steps[0]: exit = 0, want 3")
	assert.Contains(t, joined, `steps[0]: stdout = "1\n", want "42\n"`)
	assert.Contains(t, joined, `does not contain "session"`)
	assert.Contains(t, joined, "assertions[0]: Assertion failed: row_count")
	assert.Contains(t, joined, `tty: expected "pts/9", got "pts/3"`)
	assert.Contains(t, joined, "assertions[2]: Assertion failed: final_state")
	assert.Contains(t, joined, "Actual: 0 rows")
	assert.Contains(t, joined, "assertions[3]: Assertion failed: query_rows")
}

func TestRun_ScenariosAreIsolated(t *testing.T) {
	scenario := &Scenario{
		Name:        "isolated",
		Description: "every run starts from an empty database",
		Steps:       []Step{{Run: []string{"log", "-S"}}},
		Assertions:  []Assertion{{Type: AssertRowCount, Table: "sessions", Count: 1}},
	}

	for i := 0; i < 2; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, "run %d errors: %v", i, result.Errors)
		assert.Equal(t, "1\n", result.Transcript[0].Stdout)
	}
}
