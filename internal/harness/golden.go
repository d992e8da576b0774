package harness

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Transcript renders a scenario run the way a terminal would show it:
// each command line, then what it printed, then its exit code if non-zero.
// Stderr is left out.
func Transcript(name string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", name)
	for _, step := range result.Transcript {
		b.WriteString("$ ash")
		for _, arg := range step.Args {
			b.WriteByte(' ')
			b.WriteString(shellWord(arg))
		}
		b.WriteByte('\n')

		b.WriteString(step.Stdout)
		if step.Stdout != "" && !strings.HasSuffix(step.Stdout, "\n") {
			b.WriteByte('\n')
		}
		if step.Exit != 0 {
			fmt.Fprintf(&b, "[exit %d]\n", step.Exit)
		}
	}
	return []byte(b.String())
}

func shellWord(arg string) string {
	if arg == "" || strings.ContainsAny(arg, " \t\n\"'\\$") {
		return strconv.Quote(arg)
	}
	return arg
}

// RunWithGolden executes a scenario and compares its transcript against a
// golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the transcript doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the given result's transcript against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Transcript(scenarioName, result))
}
