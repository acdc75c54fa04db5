package converter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverterSealed(t *testing.T) {
	// Verify all variants implement Converter (compile-time check via assignment)
	var _ Converter = &Trivial{}
	var _ Converter = &Inverse{}
	var _ Converter = &Scale{}
	var _ Converter = &Offset{}
	var _ Converter = &Galilean{}
	var _ Converter = &Log{}
	var _ Converter = &Pow{}
	var _ Converter = &Composite{}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindTrivial, "trivial"},
		{KindInverse, "inverse"},
		{KindScale, "scale"},
		{KindOffset, "offset"},
		{KindGalilean, "galilean"},
		{KindLog, "log"},
		{KindPow, "pow"},
		{KindCombine, "combine"},
		{Kind(42), "Kind(42)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestAccessors(t *testing.T) {
	g := NewGalilean(2, 3).(*Galilean)
	assert.Equal(t, 2.0, g.Slope())
	assert.Equal(t, 3.0, g.Intercept())

	assert.Equal(t, 4.0, NewScale(4).(*Scale).Slope())
	assert.Equal(t, -1.5, NewOffset(-1.5).(*Offset).Intercept())

	lg, err := NewLog(10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, lg.(*Log).Base())

	pw, err := NewPow(math.E)
	require.NoError(t, err)
	assert.Equal(t, math.E, pw.(*Pow).Base())
}

func TestStringUsesX(t *testing.T) {
	assert.Equal(t, "2*x+3", NewGalilean(2, 3).String())
	assert.Equal(t, "1/x", NewInverse().String())
}

func TestStringAfterReleaseDoesNotPanic(t *testing.T) {
	c := NewScale(3)
	Release(c)

	assert.NotPanics(t, func() {
		assert.Equal(t, "3*x", c.String())
	})
}

func TestReleaseNilIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() { Release(nil) })
}

func TestReleaseTwicePanics(t *testing.T) {
	c := NewInverse()
	Release(c)
	assert.False(t, IsOwned(c))

	assert.PanicsWithValue(t, "converter: release of released inverse converter", func() {
		Release(c)
	})
}

func TestReleaseCompositeReleasesChildren(t *testing.T) {
	first := NewScale(2)
	second := NewOffset(3)
	c, err := Combine(first, second)
	require.NoError(t, err)

	assert.True(t, IsOwned(c))
	assert.False(t, IsOwned(first), "operands belong to the composite")
	assert.False(t, IsOwned(second))

	Release(c)

	assert.Equal(t, stateReleased, first.header().state.Load())
	assert.Equal(t, stateReleased, second.header().state.Load())
}

func TestReleaseConsumedPanics(t *testing.T) {
	first := NewScale(2)
	c, err := Combine(first, NewOffset(3))
	require.NoError(t, err)
	defer Release(c)

	assert.PanicsWithValue(t, "converter: release of consumed scale converter", func() {
		Release(first)
	})
}

func TestIsOwnedNil(t *testing.T) {
	assert.False(t, IsOwned(nil))
	assert.True(t, IsOwned(NewTrivial()))
}
