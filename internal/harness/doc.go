// Package harness runs end-to-end scenarios against the ash CLI.
//
// A scenario is a scripted shell session: each step runs one ash
// subcommand the way the shell hooks would, against a fresh history
// database and a fake process environment. After the last step the
// scenario's assertions are checked against the database.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config:
//	  DEFAULT_FORMAT: csv
//	env:
//	  SHLVL: "1"
//	steps:
//	  - run: [log, --get-session-id]
//	    export: ASH_SESSION_ID
//	  - run: [log, -c, "make test", -e, "2", -n, "1", -x, "2"]
//	    cwd: /srv/app
//	    advance: 10s
//	    expect:
//	      exit: 2
//	  - run: [query, -q, SESSION]
//	    expect:
//	      contains: ["make test"]
//	assertions:
//	  - type: row_count
//	    table: commands
//	    count: 1
//	  - type: final_state
//	    table: commands
//	    where: { command_no: "1" }
//	    expect: { rval: "2" }
//	  - type: query_rows
//	    query: SELECT command FROM commands
//	    rows: [["make test"]]
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - row_count: Counts the rows of a table, optionally filtered by where
//   - final_state: Finds exactly one row by where and checks a subset of its columns
//   - query_rows: Runs a query and compares every row
//
// # Deterministic Testing
//
// Every scenario starts from the same fake environment (historytest.NewEnv):
// the clock only moves when a step says advance, and host, terminal and
// user never change. Transcripts are therefore byte-identical across runs
// and can be compared against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/session_lifecycle.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
