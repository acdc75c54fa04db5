package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/unitconv/internal/chain"
	"github.com/roach88/unitconv/internal/converter"
)

// Harness is the scenario execution engine.
type Harness struct {
	logger *slog.Logger
}

// New returns a harness that logs to logger. A nil logger discards output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a silent harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Build the chain; the converter is released on return
//  2. Render and check the expression
//  3. Evaluate and check every case
//  4. Check float32 and bulk paths when requested
//
// An error means the scenario could not run at all. Failed checks are
// reported through Result.Errors.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	conv, err := chain.BuildStrings(scenario.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to build chain: %w", err)
	}
	defer converter.Release(conv)

	expr, err := converter.Format(conv, scenario.VariableName())
	if err != nil {
		return nil, fmt.Errorf("failed to render expression: %w", err)
	}

	h.logger.Debug("running scenario",
		"name", scenario.Name,
		"kind", conv.Kind(),
		"expression", expr,
		"cases", len(scenario.Cases))

	result := NewResult()
	result.AddExpressionTrace(expr)
	checkExpression(result, scenario.Expression, expr)

	for i, c := range scenario.Cases {
		got := converter.Apply(conv, c.Input)
		result.AddSampleTrace(c.Input, got)
		checkCase(result, i, c, got)

		if scenario.Float32 {
			checkFloat32(result, i, conv, c.Input)
		}
	}

	if scenario.Bulk && len(scenario.Cases) > 0 {
		want := make([]float64, len(result.Samples))
		for i, s := range result.Samples {
			want[i] = s.Output
		}
		checkBulk(result, conv, scenario.Inputs(), want)
		if scenario.Float32 {
			checkBulk32(result, conv, scenario.Inputs())
		}
	}

	h.logger.Debug("scenario finished",
		"name", scenario.Name,
		"pass", result.Pass,
		"errors", len(result.Errors))

	return result, nil
}
