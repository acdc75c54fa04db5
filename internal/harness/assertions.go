package harness

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/unitconv/internal/converter"
)

// Bulk layouts checked by checkBulk.
const (
	LayoutSeparate     = "separate"
	LayoutInPlace      = "in_place"
	LayoutOutputBefore = "output_before_input"
	LayoutOutputAfter  = "output_after_input"
)

func checkExpression(result *Result, want, got string) {
	if want != "" && want != got {
		result.AddError(fmt.Sprintf("expression: expected %q, got %q", want, got))
	}
}

func checkCase(result *Result, index int, c Case, got float64) {
	if c.Expect == nil {
		return
	}
	tol := c.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	if !within(got, *c.Expect, tol) {
		result.AddError(fmt.Sprintf("cases[%d]: input %s: expected %s, got %s",
			index, FormatValue(c.Input), FormatValue(*c.Expect), FormatValue(got)))
	}
}

// checkFloat32 verifies that the float32 path equals the float64 path on the
// narrowed input, narrowed once.
func checkFloat32(result *Result, index int, conv converter.Converter, input float64) {
	x := float32(input)
	want := float32(converter.Apply(conv, float64(x)))
	got := converter.Apply32(conv, x)
	if !sameBits(float64(got), float64(want)) {
		result.AddError(fmt.Sprintf("cases[%d]: float32 input %s: expected %s, got %s",
			index, format32(x), format32(want), format32(got)))
	}
}

// checkBulk converts inputs through every slice layout and compares each
// result with the scalar outputs.
func checkBulk(result *Result, conv converter.Converter, inputs, want []float64) {
	n := len(inputs)
	layouts := []struct {
		name string
		run  func() ([]float64, error)
	}{
		{LayoutSeparate, func() ([]float64, error) {
			in := append([]float64(nil), inputs...)
			return converter.ApplyFloat64s(conv, in, make([]float64, n))
		}},
		{LayoutInPlace, func() ([]float64, error) {
			buf := append([]float64(nil), inputs...)
			return converter.ApplyFloat64s(conv, buf, buf)
		}},
		{LayoutOutputBefore, func() ([]float64, error) {
			storage := make([]float64, n+1)
			copy(storage[1:], inputs)
			return converter.ApplyFloat64s(conv, storage[1:], storage[:n])
		}},
		{LayoutOutputAfter, func() ([]float64, error) {
			storage := make([]float64, n+1)
			copy(storage, inputs)
			return converter.ApplyFloat64s(conv, storage[:n], storage[1:])
		}},
	}

	for _, l := range layouts {
		result.AddBulkTrace(l.name)
		got, err := l.run()
		if err != nil {
			result.AddError(fmt.Sprintf("bulk %s: %v", l.name, err))
			continue
		}
		for i := range want {
			if !sameBits(got[i], want[i]) {
				result.AddError(fmt.Sprintf("bulk %s: index %d: expected %s, got %s",
					l.name, i, FormatValue(want[i]), FormatValue(got[i])))
			}
		}
	}
}

// checkBulk32 runs the overlapping float32 layouts against Apply32.
func checkBulk32(result *Result, conv converter.Converter, inputs []float64) {
	n := len(inputs)
	want := make([]float32, n)
	for i, x := range inputs {
		want[i] = converter.Apply32(conv, float32(x))
	}

	for _, shift := range []int{-1, 0, 1} {
		name := LayoutInPlace + "_float32"
		switch shift {
		case -1:
			name = LayoutOutputBefore + "_float32"
		case 1:
			name = LayoutOutputAfter + "_float32"
		}
		result.AddBulkTrace(name)

		storage := make([]float32, n+2)
		for i, x := range inputs {
			storage[i+1] = float32(x)
		}
		got, err := converter.ApplyFloat32s(conv, storage[1:n+1], storage[1+shift:n+1+shift])
		if err != nil {
			result.AddError(fmt.Sprintf("bulk %s: %v", name, err))
			continue
		}
		for i := range want {
			if !sameBits(float64(got[i]), float64(want[i])) {
				result.AddError(fmt.Sprintf("bulk %s: index %d: expected %s, got %s",
					name, i, format32(want[i]), format32(got[i])))
			}
		}
	}
}

// within reports whether got is within tol of want, relative to
// max(1, |want|). NaN matches only NaN and infinities match exactly.
func within(got, want, tol float64) bool {
	if math.IsNaN(want) {
		return math.IsNaN(got)
	}
	if got == want {
		return true
	}
	if math.IsInf(want, 0) || math.IsNaN(got) {
		return false
	}
	return math.Abs(got-want) <= tol*math.Max(1, math.Abs(want))
}

func sameBits(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

func format32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
