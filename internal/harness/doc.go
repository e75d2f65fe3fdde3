// Package harness provides conformance testing for study sequence generation.
//
// The harness compiles a study, generates a seeded population, round-trips
// it through an in-memory store, hands sequences out to participants, and
// checks assertions against the population's balance report.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	study: ../studies/counterbalanced.cue   # or an inline: block
//	num_sequences: 200
//	seed: 42
//	participants: 5
//	assertions:
//	  - type: occurrences
//	    steps: [taskA, taskB]
//	    count: 100
//	  - type: end_once
//
// A relative study path is resolved against the scenario file's directory.
//
// # Assertion Types
//
//   - occurrences: population totals of each listed step (count, min, max)
//   - per_sequence: exact occurrences of a step within every sequence
//   - spread: max minus min totals over steps (all steps when none listed)
//   - length: bounds on flattened sequence length
//   - end_once: "end" appears once, last, in every sequence
//   - expect_error: generation fails with the given code or message
//
// # Deterministic Testing
//
// Every scenario runs with a fixed seed (testutil.DefaultSeed unless the
// scenario sets one), sequential participant IDs, and a fresh in-memory
// SQLite database, so populations are reproducible and can be compared with
// golden files via RunWithGolden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/counterbalanced.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
