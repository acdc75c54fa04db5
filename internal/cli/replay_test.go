package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitconv/internal/harness"
	"github.com/roach88/unitconv/internal/store"
)

func executeReplay(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// recordScenario writes the scenario, runs "test --db" on it and returns the
// scenario path and database path.
func recordScenario(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := writeScenarioFile(t, dir, "fahrenheit.yaml", content)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := executeTest(t, "text", dir, "--db", dbPath)
	require.NoError(t, err)
	return path, dbPath
}

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, err := executeReplay(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayNonExistentDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	_, err := executeReplay(t, "text", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "replay must not create the database")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := executeReplay(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found in database.")
}

func TestReplayDeterministic(t *testing.T) {
	_, dbPath := recordScenario(t, fahrenheitScenario)

	out, err := executeReplay(t, "text", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 run(s)")
	assert.Contains(t, out, "✓ Run 1: fahrenheit (")
	assert.Contains(t, out, "✓ All runs verified deterministic")
}

func TestReplayDeterministicJSON(t *testing.T) {
	_, dbPath := recordScenario(t, fahrenheitScenario)

	out, err := executeReplay(t, "json", "--db", dbPath)
	require.NoError(t, err)

	var response struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.True(t, response.Data.AllDeterministic)
	assert.Equal(t, 1, response.Data.TotalRuns)
	require.Len(t, response.Data.Runs, 1)
	assert.Equal(t, "fahrenheit", response.Data.Runs[0].Scenario)
	assert.Equal(t, int64(1), response.Data.Runs[0].Seq)
	assert.Equal(t, 2, response.Data.Runs[0].Samples)
	assert.Empty(t, response.Data.Runs[0].Differences)
}

func TestReplaySpecificRun(t *testing.T) {
	path, dbPath := recordScenario(t, fahrenheitScenario)

	// A second recording of the same scenario.
	_, err := executeTest(t, "text", filepath.Dir(path), "--db", dbPath)
	require.NoError(t, err)

	st, err := store.Open(context.Background(), dbPath, store.MustExist())
	require.NoError(t, err)
	runs, err := st.ListRuns(context.Background(), "fahrenheit")
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, runs, 2)

	out, err := executeReplay(t, "text", "--db", dbPath, "--run", runs[1].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 1 run(s)")
	assert.Contains(t, out, "Run 2: fahrenheit ("+runs[1].ID+")")
	assert.NotContains(t, out, runs[0].ID)
}

func TestReplayUnknownRun(t *testing.T) {
	_, dbPath := recordScenario(t, fahrenheitScenario)

	_, err := executeReplay(t, "text", "--db", dbPath, "--run", "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found: no-such-run")
}

func TestReplayDetectsChangedScenario(t *testing.T) {
	path, dbPath := recordScenario(t, fahrenheitScenario)

	changed := strings.Replace(fahrenheitScenario, "offset=32", "offset=33", 1)
	require.NoError(t, os.WriteFile(path, []byte(changed), 0644))

	out, err := executeReplay(t, "text", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Run 1: fahrenheit")
	assert.Contains(t, out, `expression: recorded "1.8*x+32", replayed "1.8*x+33"`)
	assert.Contains(t, out, "sample 0: output recorded 212, replayed 213")
	assert.Contains(t, out, "✗ Determinism verification failed")
}

func TestReplayDetectsChangedScenarioJSON(t *testing.T) {
	path, dbPath := recordScenario(t, fahrenheitScenario)

	changed := strings.Replace(fahrenheitScenario, "offset=32", "offset=33", 1)
	require.NoError(t, os.WriteFile(path, []byte(changed), 0644))

	out, err := executeReplay(t, "json", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, CodeReplayMismatch, response.Error.Code)
}

func TestReplayMissingScenarioFile(t *testing.T) {
	path, dbPath := recordScenario(t, fahrenheitScenario)
	require.NoError(t, os.Remove(path))

	_, err := executeReplay(t, "text", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to replay run")
}

func TestReplayHelpText(t *testing.T) {
	out, err := executeReplay(t, "text", "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "determinism")
	assert.Contains(t, out, "--db")
	assert.Contains(t, out, "--run")
}

func TestCompareRun(t *testing.T) {
	run := store.Run{Expression: "2*x"}
	recorded := []store.Sample{
		{Index: 0, Input: 1, Output: 2},
		{Index: 1, Input: math.NaN(), Output: math.NaN()},
		{Index: 2, Input: 0, Output: 0},
	}

	t.Run("identical", func(t *testing.T) {
		replayed := &harness.Result{
			Expression: "2*x",
			Samples: []harness.Sample{
				{Input: 1, Output: 2},
				{Input: math.NaN(), Output: math.NaN()},
				{Input: 0, Output: 0},
			},
		}
		assert.Empty(t, compareRun(run, recorded, replayed))
	})

	t.Run("signed zero differs", func(t *testing.T) {
		replayed := &harness.Result{
			Expression: "2*x",
			Samples: []harness.Sample{
				{Input: 1, Output: 2},
				{Input: math.NaN(), Output: math.NaN()},
				{Input: 0, Output: math.Copysign(0, -1)},
			},
		}
		assert.Equal(t, []string{"sample 2: output recorded 0, replayed -0"}, compareRun(run, recorded, replayed))
	})

	t.Run("expression and count", func(t *testing.T) {
		replayed := &harness.Result{
			Expression: "3*x",
			Samples:    []harness.Sample{{Input: 2, Output: 6}},
		}
		assert.Equal(t, []string{
			`expression: recorded "2*x", replayed "3*x"`,
			"sample count: recorded 3, replayed 1",
			"sample 0: input recorded 1, replayed 2",
		}, compareRun(run, recorded, replayed))
	})
}
