package converter

import (
	"fmt"
	"sync/atomic"
)

// Converter is a sealed interface over the converter variants.
// Only *Trivial, *Inverse, *Scale, *Offset, *Galilean, *Log, *Pow and
// *Composite implement it.
type Converter interface {
	// Kind identifies the variant.
	Kind() Kind

	// String renders the converter with "x" as the variable.
	String() string

	header() *node // Sealed - only the variants embed node
}

// Kind identifies a converter variant.
type Kind int

const (
	KindTrivial Kind = iota
	KindInverse
	KindScale
	KindOffset
	KindGalilean
	KindLog
	KindPow
	KindCombine
)

var kindNames = [...]string{
	KindTrivial:  "trivial",
	KindInverse:  "inverse",
	KindScale:    "scale",
	KindOffset:   "offset",
	KindGalilean: "galilean",
	KindLog:      "log",
	KindPow:      "pow",
	KindCombine:  "combine",
}

// String returns the lower-case variant name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ownership states of a converter value.
const (
	stateOwned uint32 = iota
	stateConsumed
	stateReleased
)

var stateNames = [...]string{
	stateOwned:    "owned",
	stateConsumed: "consumed",
	stateReleased: "released",
}

// node carries the ownership state shared by all variants.
// The state is atomic so concurrent readers never race with the checks.
type node struct {
	state atomic.Uint32
}

func (n *node) header() *node { return n }

func (n *node) stateName() string {
	return stateNames[n.state.Load()]
}

// Trivial is the identity converter, y = x.
type Trivial struct{ node }

// Inverse is the reciprocal converter, y = 1/x.
type Inverse struct{ node }

// Scale multiplies values by a slope, y = a*x.
type Scale struct {
	node
	slope float64
}

// Offset adds an intercept to values, y = x + b.
type Offset struct {
	node
	intercept float64
}

// Galilean is the affine converter, y = a*x + b.
type Galilean struct {
	node
	slope     float64
	intercept float64
}

// Log is the logarithmic converter, y = log_base(x).
type Log struct {
	node
	base float64
	logE float64 // 1/ln(base)
}

// Pow is the exponential converter, y = base^x.
type Pow struct {
	node
	base float64
}

// Composite applies First and then Second, y = second(first(x)).
// It owns both children.
type Composite struct {
	node
	first  Converter
	second Converter
}

func (*Trivial) Kind() Kind   { return KindTrivial }
func (*Inverse) Kind() Kind   { return KindInverse }
func (*Scale) Kind() Kind     { return KindScale }
func (*Offset) Kind() Kind    { return KindOffset }
func (*Galilean) Kind() Kind  { return KindGalilean }
func (*Log) Kind() Kind       { return KindLog }
func (*Pow) Kind() Kind       { return KindPow }
func (*Composite) Kind() Kind { return KindCombine }

func (c *Trivial) String() string   { return describe(c) }
func (c *Inverse) String() string   { return describe(c) }
func (c *Scale) String() string     { return describe(c) }
func (c *Offset) String() string    { return describe(c) }
func (c *Galilean) String() string  { return describe(c) }
func (c *Log) String() string       { return describe(c) }
func (c *Pow) String() string       { return describe(c) }
func (c *Composite) String() string { return describe(c) }

// Slope returns the multiplier.
func (c *Scale) Slope() float64 { return c.slope }

// Intercept returns the added constant.
func (c *Offset) Intercept() float64 { return c.intercept }

// Slope returns the multiplier.
func (c *Galilean) Slope() float64 { return c.slope }

// Intercept returns the added constant.
func (c *Galilean) Intercept() float64 { return c.intercept }

// Base returns the logarithmic base.
func (c *Log) Base() float64 { return c.base }

// Base returns the exponential base.
func (c *Pow) Base() float64 { return c.base }

// First returns the converter applied first.
func (c *Composite) First() Converter { return c.first }

// Second returns the converter applied second.
func (c *Composite) Second() Converter { return c.second }

// IsOwned reports whether c can still be passed to Combine or Release by
// its holder. It returns false for nil, consumed and released values.
func IsOwned(c Converter) bool {
	return c != nil && c.header().state.Load() == stateOwned
}

// Release disposes of an owned converter and, recursively, of the children
// of a Composite. Releasing nil is a no-op.
//
// Releasing a value that was consumed by Combine or already released is a
// caller bug and panics.
func Release(c Converter) {
	if c == nil {
		return
	}
	h := c.header()
	if !h.state.CompareAndSwap(stateOwned, stateReleased) {
		panic(fmt.Sprintf("converter: release of %s %s converter", h.stateName(), c.Kind()))
	}
	if comp, ok := c.(*Composite); ok {
		releaseChild(comp.first)
		releaseChild(comp.second)
	}
}

// releaseChild releases a child consumed by a Composite.
func releaseChild(c Converter) {
	c.header().state.Store(stateReleased)
	if comp, ok := c.(*Composite); ok {
		releaseChild(comp.first)
		releaseChild(comp.second)
	}
}

// mustBeLive panics if c is nil or released.
func mustBeLive(c Converter, op string) {
	if c == nil {
		panic(fmt.Sprintf("converter: %s on nil converter", op))
	}
	if c.header().state.Load() == stateReleased {
		panic(fmt.Sprintf("converter: %s on released %s converter", op, c.Kind()))
	}
}
