package harness

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitconv/internal/converter"
)

func expect(v float64) *float64 {
	return &v
}

func TestRun_Passes(t *testing.T) {
	scenario := &Scenario{
		Name:        "fahrenheit",
		Description: "Celsius to Fahrenheit",
		Steps:       []string{"scale=1.8", "offset=32"},
		Expression:  "1.8*x+32",
		Cases: []Case{
			{Input: 100, Expect: expect(212)},
			{Input: -40, Expect: expect(-40)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "1.8*x+32", result.Expression)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, EventExpression, result.Trace[0].Type)
	assert.Equal(t, "1.8*x+32", result.Trace[0].Text)
	assert.Equal(t, EventSample, result.Trace[1].Type)
	assert.Equal(t, "100", result.Trace[1].Input)
	assert.Equal(t, "212", result.Trace[1].Output)

	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
	}

	assert.Equal(t, []Sample{{Input: 100, Output: 212}, {Input: -40, Output: -40}}, result.Samples)
}

func TestRun_ExpressionMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong expression",
		Steps:       []string{"offset=3", "scale=2"},
		Expression:  "2*x+3",
		Cases:       []Case{{Input: 1, Expect: expect(8)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{`expression: expected "2*x+3", got "2*(x+3)"`}, result.Errors)
}

func TestRun_CaseMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "wrong value",
		Steps:       []string{"scale=2"},
		Cases: []Case{
			{Input: 3, Expect: expect(6)},
			{Input: 4, Expect: expect(9)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{"cases[1]: input 4: expected 9, got 8"}, result.Errors)
}

func TestRun_Tolerance(t *testing.T) {
	scenario := &Scenario{
		Name:        "tolerance",
		Description: "loose tolerance",
		Steps:       []string{"scale=3"},
		Cases: []Case{
			{Input: 1, Expect: expect(3.001), Tolerance: 1e-3},
			{Input: 1, Expect: expect(3.001)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cases[1]")
}

func TestRun_RecordsUncheckedCases(t *testing.T) {
	scenario := &Scenario{
		Name:        "record",
		Description: "no expectations",
		Steps:       []string{"inverse"},
		Cases:       []Case{{Input: 0}, {Input: -0.5}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Equal(t, "+Inf", result.Trace[1].Output)
	assert.Equal(t, "-2", result.Trace[2].Output)
}

func TestRun_NaNExpectations(t *testing.T) {
	scenario := &Scenario{
		Name:        "nan",
		Description: "log of a negative number",
		Steps:       []string{"log=10"},
		Cases: []Case{
			{Input: -1, Expect: expect(math.NaN())},
			{Input: 10, Expect: expect(math.NaN())},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cases[1]: input 10: expected NaN")
	assert.Equal(t, "NaN", result.Trace[1].Output)
}

func TestRun_Bulk(t *testing.T) {
	scenario := &Scenario{
		Name:        "bulk",
		Description: "every slice layout",
		Steps:       []string{"offset=-32", "scale=0.5", "log=e"},
		Bulk:        true,
		Float32:     true,
		Cases:       []Case{{Input: 34}, {Input: 40}, {Input: 100}, {Input: 32}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	var layouts []string
	for _, ev := range result.Trace {
		if ev.Type == EventBulk {
			layouts = append(layouts, ev.Text)
		}
	}
	assert.Equal(t, []string{
		LayoutSeparate,
		LayoutInPlace,
		LayoutOutputBefore,
		LayoutOutputAfter,
		"output_before_input_float32",
		"in_place_float32",
		"output_after_input_float32",
	}, layouts)
}

func TestRun_BuildFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_base",
		Description: "log base one",
		Steps:       []string{"scale=2", "log=1"},
		Cases:       []Case{{Input: 1}},
	}

	result, err := Run(scenario)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, converter.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "failed to build chain: step 1")
}

func TestRun_VariableIsNormalized(t *testing.T) {
	scenario := &Scenario{
		Name:        "variable",
		Description: "decomposed variable",
		Variable:    " e\u0301 ",
		Steps:       []string{"scale=2"},
		Expression:  "2*\u00e9",
		Cases:       []Case{{Input: 1, Expect: expect(2)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestHarness_Logs(t *testing.T) {
	var buf bytes.Buffer
	h := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	_, err := h.Run(&Scenario{
		Name:        "logged",
		Description: "logging",
		Steps:       []string{"scale=2"},
		Cases:       []Case{{Input: 1}},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "running scenario")
	assert.Contains(t, buf.String(), "name=logged")
	assert.Contains(t, buf.String(), "expression=2*x")
}

func TestWithin(t *testing.T) {
	tests := []struct {
		got, want, tol float64
		ok             bool
	}{
		{1, 1, 0, true},
		{1 + 1e-13, 1, 1e-12, true},
		{1 + 1e-11, 1, 1e-12, false},
		{1e6 + 1e-7, 1e6, 1e-12, true},
		{1e-20, 0, 1e-12, true},
		{math.Inf(1), math.Inf(1), 1e-12, true},
		{math.Inf(-1), math.Inf(1), 1e-12, false},
		{1e308, math.Inf(1), 1e-12, false},
		{math.NaN(), math.NaN(), 0, true},
		{math.NaN(), 1, 1, false},
		{1, math.NaN(), 1, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, within(tt.got, tt.want, tt.tol), "within(%g, %g, %g)", tt.got, tt.want, tt.tol)
	}
}
