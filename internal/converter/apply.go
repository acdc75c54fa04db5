package converter

import (
	"fmt"
	"math"
	"unsafe"
)

// Float is the element constraint for ApplySlice.
type Float interface {
	~float32 | ~float64
}

// Apply converts a float64.
// Panics if c is nil or released.
func Apply(c Converter, x float64) float64 {
	mustBeLive(c, "apply")
	return eval(c, x)
}

// Apply32 converts a float32. The conversion is computed in float64 and
// narrowed once, so no precision is lost in intermediate steps.
// Panics if c is nil or released.
func Apply32(c Converter, x float32) float32 {
	mustBeLive(c, "apply")
	return float32(eval(c, float64(x)))
}

// ApplySlice converts len(in) values from in into out and returns
// out[:len(in)].
//
// in and out may be the same slice or overlap in either direction. The
// result is the same as converting into separate storage: when out starts
// inside in, past its first element, the values are processed from last to
// first, otherwise from first to last.
//
// Returns an INVALID_ARGUMENT error if out is nil or shorter than in.
// Panics if c is nil or released.
func ApplySlice[F Float](c Converter, in, out []F) ([]F, error) {
	if out == nil {
		return nil, invalidArgument("apply", "output slice is nil")
	}
	if len(out) < len(in) {
		return nil, invalidArgument("apply", "output holds %d values, input has %d", len(out), len(in))
	}
	mustBeLive(c, "apply")

	n := len(in)
	out = out[:n]
	if n == 0 {
		return out, nil
	}

	if descending(in, out) {
		for i := n - 1; i >= 0; i-- {
			out[i] = F(eval(c, float64(in[i])))
		}
		return out, nil
	}
	for i := 0; i < n; i++ {
		out[i] = F(eval(c, float64(in[i])))
	}
	return out, nil
}

// ApplyFloat32s converts a float32 slice; see ApplySlice.
func ApplyFloat32s(c Converter, in, out []float32) ([]float32, error) {
	return ApplySlice(c, in, out)
}

// ApplyFloat64s converts a float64 slice; see ApplySlice.
func ApplyFloat64s(c Converter, in, out []float64) ([]float64, error) {
	return ApplySlice(c, in, out)
}

// descending reports whether out begins inside in after its first element,
// in which case an ascending pass would overwrite unread input.
// Both slices are non-empty.
func descending[F Float](in, out []F) bool {
	src := uintptr(unsafe.Pointer(unsafe.SliceData(in)))
	dst := uintptr(unsafe.Pointer(unsafe.SliceData(out)))
	end := src + uintptr(len(in))*unsafe.Sizeof(in[0])
	return dst > src && dst < end
}

func eval(c Converter, x float64) float64 {
	switch c := c.(type) {
	case *Trivial:
		return x
	case *Inverse:
		return 1 / x
	case *Scale:
		return c.slope * x
	case *Offset:
		return x + c.intercept
	case *Galilean:
		// No fused multiply-add: the result must match Scale then Offset.
		return float64(c.slope*x) + c.intercept
	case *Log:
		switch c.base {
		case 2:
			return math.Log2(x)
		case math.E:
			return math.Log(x)
		case 10:
			return math.Log10(x)
		}
		return math.Log(x) * c.logE
	case *Pow:
		switch c.base {
		case 2:
			return math.Exp2(x)
		case math.E:
			return math.Exp(x)
		}
		return math.Pow(c.base, x)
	case *Composite:
		return eval(c.second, eval(c.first, x))
	}
	panic(fmt.Sprintf("converter: unknown variant %T", c))
}
