// Package converter provides the unit-conversion function algebra for unitconv.
//
// A Converter is one of eight variants: Trivial (y = x), Inverse (y = 1/x),
// Scale (y = a*x), Offset (y = x + b), Galilean (y = a*x + b), Log
// (y = log_base(x)), Pow (y = base^x) and Composite (y = second(first(x))).
// The set is closed: Converter is a sealed interface and every operation on
// it is an exhaustive type switch.
//
// # Ownership
//
// Every converter has exactly one owner. Factories hand an owned value to the
// caller. Combine takes ownership of both operands; on success the caller
// must not use or release them again, on failure the caller still owns both.
// Release disposes of an owned value and, for a Composite, of its children.
//
//   - Combining a consumed or released value is an INVALID_ARGUMENT error.
//   - Releasing a consumed or released value panics.
//   - Evaluating or formatting a nil or released value panics.
//
// Panics mark caller bugs, never data-dependent conditions. Converters are
// immutable after construction and safe for concurrent evaluation and
// formatting, provided Release happens after all other uses.
//
// # Evaluation
//
// Apply and Apply32 evaluate one value; the float32 path computes in float64
// and narrows once. ApplySlice evaluates a slice into an output slice that
// may alias or overlap the input in either direction: the traversal order is
// picked from the start addresses the way memmove picks its copy direction.
//
// # Expressions
//
// Expression renders a converter as an algebraic expression into a bounded
// buffer with snprintf semantics: the full length is always returned and
// truncation is not an error.
package converter
