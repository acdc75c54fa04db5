package chain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/unitconv/internal/converter"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		input string
		want  Step
	}{
		{"trivial", Step{Kind: converter.KindTrivial}},
		{"inverse", Step{Kind: converter.KindInverse}},
		{"scale=0.3048", Step{Kind: converter.KindScale, Slope: 0.3048}},
		{" Scale = 2 ", Step{Kind: converter.KindScale, Slope: 2}},
		{"offset=-273.15", Step{Kind: converter.KindOffset, Intercept: -273.15}},
		{"galilean=1.8, 32", Step{Kind: converter.KindGalilean, Slope: 1.8, Intercept: 32}},
		{"log=10", Step{Kind: converter.KindLog, Base: 10}},
		{"log=e", Step{Kind: converter.KindLog, Base: math.E}},
		{"pow=E", Step{Kind: converter.KindPow, Base: math.E}},
		{"pow=2", Step{Kind: converter.KindPow, Base: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStep(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStepErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"", "empty step"},
		{"kelvin", `unknown step kind "kelvin"`},
		{"scale", "scale takes 1 parameter(s), got 0"},
		{"scale=1,2", "scale takes 1 parameter(s), got 2"},
		{"inverse=2", "inverse takes 0 parameter(s), got 1"},
		{"galilean=2", "galilean takes 2 parameter(s), got 1"},
		{"offset=abc", `invalid number "abc"`},
		{"scale=NaN", `number "NaN" is not finite`},
		{"galilean=1,+Inf", `number "+Inf" is not finite`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseStep(tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestStepStringRoundTrips(t *testing.T) {
	for _, s := range []string{"trivial", "inverse", "scale=0.3048", "offset=-32", "galilean=1.8,32", "log=e", "log=10", "pow=2"} {
		step, err := ParseStep(s)
		require.NoError(t, err)
		assert.Equal(t, s, step.String())
	}
}

func TestParseStepsReportsIndex(t *testing.T) {
	_, err := ParseSteps([]string{"scale=2", "offset=x"})
	require.Error(t, err)

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "offset=x", se.Input)
	assert.Equal(t, `step 1 ("offset=x"): invalid number "x"`, err.Error())
}

func TestBuildFahrenheit(t *testing.T) {
	c, err := BuildStrings([]string{"scale=1.8", "offset=32"})
	require.NoError(t, err)
	defer converter.Release(c)

	assert.Equal(t, 212.0, converter.Apply(c, 100))
	assert.Equal(t, "1.8*x+32", c.String())
}

func TestBuildEmptyChainIsTrivial(t *testing.T) {
	c, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, converter.KindTrivial, c.Kind())
}

func TestBuildElidesTrivialSteps(t *testing.T) {
	c, err := BuildStrings([]string{"trivial", "scale=1", "log=10", "offset=0"})
	require.NoError(t, err)

	assert.Equal(t, converter.KindLog, c.Kind())
	assert.Equal(t, "log10(x)", c.String())
}

func TestBuildNestsLeftToRight(t *testing.T) {
	c, err := BuildStrings([]string{"offset=3", "scale=2", "inverse"})
	require.NoError(t, err)

	comp, ok := c.(*converter.Composite)
	require.True(t, ok)
	assert.Equal(t, converter.KindInverse, comp.Second().Kind())
	assert.Equal(t, converter.KindCombine, comp.First().Kind())
	assert.Equal(t, "1/(2*(x+3))", c.String())
	assert.Equal(t, 0.0625, converter.Apply(c, 5))
}

func TestBuildInvalidBase(t *testing.T) {
	c, err := Build([]Step{
		{Kind: converter.KindScale, Slope: 2},
		{Kind: converter.KindLog, Base: 1},
	})
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, converter.IsInvalidArgument(err))

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
}

func TestBuildRejectsCompositeStep(t *testing.T) {
	_, err := Build([]Step{{Kind: converter.KindCombine}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step kind combine cannot be built directly")
}

func TestVariableNormalizesToNFC(t *testing.T) {
	decomposed := "e\u0301" // e + combining acute accent
	assert.Equal(t, "\u00e9", Variable(decomposed))
	assert.Equal(t, "x", Variable("  x "))
}
