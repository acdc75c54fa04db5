package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/unitconv/internal/harness"
	"github.com/roach88/unitconv/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string   `json:"run_id"`
	Scenario      string   `json:"scenario"`
	Seq           int64    `json:"seq"`
	Samples       int      `json:"samples"`
	Deterministic bool     `json:"deterministic"`
	Differences   []string `json:"differences,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded runs and verify determinism",
		Long: `Replay runs recorded by "unitconv test --db" and verify determinism.

Each run's scenario is loaded again from its recorded path and executed.
The rendered expression must match exactly and every output must match
the recorded value bit for bit.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, scenario missing, etc.)

Examples:
  unitconv replay --db ./runs.db
  unitconv replay --db ./runs.db --run 01890a5d-ac96-774b-bcce-b302099a8057
  unitconv replay --db ./runs.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(ctx, opts.Database, store.MustExist(), store.WithLogger(slog.Default()))
	if errors.Is(err, fs.ErrNotExist) {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx, "")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	if len(runs) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{
				Runs:             []ReplayRunResult{},
				TotalRuns:        0,
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in database.")
		return nil
	}

	h := harness.New(slog.Default())
	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}

	for _, run := range runs {
		runResult, err := replayRun(ctx, st, h, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}

	return outputReplayText(cmd, result, opts.Verbose)
}

// replayRun re-executes a recorded run and compares it with the record.
func replayRun(ctx context.Context, st *store.Store, h *harness.Harness, run store.Run) (ReplayRunResult, error) {
	recorded, err := st.ReadSamples(ctx, run.ID)
	if err != nil {
		return ReplayRunResult{}, err
	}

	scenario, err := harness.LoadScenario(run.ScenarioPath)
	if err != nil {
		return ReplayRunResult{}, err
	}

	result, err := h.Run(scenario)
	if err != nil {
		return ReplayRunResult{}, err
	}

	diffs := compareRun(run, recorded, result)
	slog.Debug("run replayed", "run_id", run.ID, "scenario", run.Scenario, "differences", len(diffs))

	return ReplayRunResult{
		RunID:         run.ID,
		Scenario:      run.Scenario,
		Seq:           run.Seq,
		Samples:       len(recorded),
		Deterministic: len(diffs) == 0,
		Differences:   diffs,
	}, nil
}

// compareRun lists every difference between a recorded run and a replay.
// Values are compared by their bit patterns.
func compareRun(run store.Run, recorded []store.Sample, replayed *harness.Result) []string {
	var diffs []string

	if run.Expression != replayed.Expression {
		diffs = append(diffs, fmt.Sprintf("expression: recorded %q, replayed %q", run.Expression, replayed.Expression))
	}

	if len(recorded) != len(replayed.Samples) {
		diffs = append(diffs, fmt.Sprintf("sample count: recorded %d, replayed %d", len(recorded), len(replayed.Samples)))
	}

	for i := 0; i < min(len(recorded), len(replayed.Samples)); i++ {
		want, got := recorded[i], replayed.Samples[i]
		if math.Float64bits(want.Input) != math.Float64bits(got.Input) {
			diffs = append(diffs, fmt.Sprintf("sample %d: input recorded %s, replayed %s",
				i, harness.FormatValue(want.Input), harness.FormatValue(got.Input)))
			continue
		}
		if math.Float64bits(want.Output) != math.Float64bits(got.Output) {
			diffs = append(diffs, fmt.Sprintf("sample %d: output recorded %s, replayed %s",
				i, harness.FormatValue(want.Output), harness.FormatValue(got.Output)))
		}
	}

	return diffs
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	out := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}

	if !result.AllDeterministic {
		if err := out.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    CodeReplayMismatch,
				Message: "determinism verification failed",
			},
		}); err != nil {
			return err
		}
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}

	return out.Success(result)
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Run %d: %s (%s)\n", status, run.Seq, run.Scenario, run.RunID)
		if verbose {
			fmt.Fprintf(w, "  Samples: %d\n", run.Samples)
		}
		for _, d := range run.Differences {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	fmt.Fprintln(w)

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
