package converter

import (
	"math"
)

// NewTrivial returns the identity converter, y = x.
func NewTrivial() Converter {
	return &Trivial{}
}

// NewInverse returns the reciprocal converter, y = 1/x.
func NewInverse() Converter {
	return &Inverse{}
}

// NewScale returns a converter that multiplies values by slope, y = slope*x.
// A slope of 1 yields the trivial converter.
func NewScale(slope float64) Converter {
	if slope == 1 {
		return NewTrivial()
	}
	return &Scale{slope: slope}
}

// NewOffset returns a converter that adds intercept to values, y = x + intercept.
// An intercept of 0 yields the trivial converter.
func NewOffset(intercept float64) Converter {
	if intercept == 0 {
		return NewTrivial()
	}
	return &Offset{intercept: intercept}
}

// NewGalilean returns the affine converter y = slope*x + intercept.
// Degenerate parameters yield the simpler variant: an Offset when slope is 1,
// a Scale (or Trivial) when intercept is 0.
func NewGalilean(slope, intercept float64) Converter {
	switch {
	case slope == 1:
		return NewOffset(intercept)
	case intercept == 0:
		return NewScale(slope)
	}
	return &Galilean{slope: slope, intercept: intercept}
}

// NewLog returns the logarithmic converter y = log_base(x).
// Returns an INVALID_ARGUMENT error unless base is finite and > 1.
func NewLog(base float64) (Converter, error) {
	if !(base > 1) {
		return nil, invalidArgument("log", "base must be greater than one, got %g", base)
	}
	if math.IsInf(base, 0) {
		return nil, invalidArgument("log", "base must be finite, got %g", base)
	}
	return &Log{base: base, logE: 1 / math.Log(base)}, nil
}

// NewPow returns the exponential converter y = base^x.
// Returns an INVALID_ARGUMENT error unless base is finite and > 0.
func NewPow(base float64) (Converter, error) {
	if !(base > 0) {
		return nil, invalidArgument("pow", "base must be positive, got %g", base)
	}
	if math.IsInf(base, 0) {
		return nil, invalidArgument("pow", "base must be finite, got %g", base)
	}
	return &Pow{base: base}, nil
}
