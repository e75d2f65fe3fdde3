package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	fixtureStudy     = filepath.Join("testdata", "studies", "study.cue")
	fixtureStudyYAML = filepath.Join("testdata", "studies", "study.yaml")
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// executeJSON runs the root command with --format json and decodes the
// response data into data.
func executeJSON(t *testing.T, data any, args ...string) (CLIResponse, error) {
	t.Helper()
	out, err := execute(t, append([]string{"--format", "json"}, args...)...)

	raw := struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), "output: %s", out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.CLIResponse, err
}

// generateFixture stores a seeded population of the fixture study and
// returns the database path and population ID.
func generateFixture(t *testing.T) (string, string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "study.db")
	var result GenerateResult
	_, err := executeJSON(t, &result, "generate", fixtureStudy, "--db", db, "--seed", "11")
	require.NoError(t, err)
	require.NotEmpty(t, result.PopulationID)
	return db, result.PopulationID
}

func itoa(n int) string { return strconv.Itoa(n) }
