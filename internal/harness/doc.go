// Package harness runs conformance scenarios against converter chains.
//
// A scenario names a chain of steps, the expression it must render to and a
// list of input/expected-output cases. Scenarios are written in YAML or CUE:
//
//	name: fahrenheit
//	description: Celsius to Fahrenheit
//	steps: ["scale=1.8", "offset=32"]
//	expression: 1.8*x+32
//	float32: true
//	bulk: true
//	cases:
//	  - input: 100
//	    expect: 212
//	  - input: -40
//	    expect: -40
//
// # Checks
//
// Every case is evaluated through Apply and compared against expect with a
// relative tolerance (default 1e-12). A case without expect is recorded in
// the trace but not checked. With float32 set, each case is also evaluated
// through Apply32 and compared at float32 precision. With bulk set, all inputs
// are converted through ApplySlice in separate storage, in place, and with
// the output overlapping the input from either side; every layout must match
// the scalar results bit for bit.
//
// # Traces
//
// Run records the rendered expression and every sample in an ordered trace.
// Values are written with strconv 'g' formatting so NaN and infinities
// survive JSON. RunWithGolden compares the trace against
// testdata/golden/{name}.golden; regenerate with:
//
//	go test ./internal/harness -update
package harness
