package harness

import "strconv"

// Trace event types.
const (
	EventExpression = "expression"
	EventSample     = "sample"
	EventBulk       = "bulk"
)

// TraceEvent is one entry of a scenario trace.
// Numbers are strings so that NaN and infinities survive JSON.
type TraceEvent struct {
	Type   string `json:"type"` // "expression", "sample" or "bulk"
	Seq    int64  `json:"seq"`
	Text   string `json:"text,omitempty"`   // expression text or bulk layout
	Input  string `json:"input,omitempty"`  // sample input
	Output string `json:"output,omitempty"` // sample output
}

// Sample is an exact scalar conversion recorded during a run.
type Sample struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every check matched.
	Pass bool `json:"pass"`

	// Expression is the rendered expression of the chain.
	Expression string `json:"expression"`

	// Trace contains the expression, every sample and every bulk layout in
	// order. Used for golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Samples holds the exact float64 results, one per case.
	Samples []Sample `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	seq int64
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddExpressionTrace records the rendered expression.
func (r *Result) AddExpressionTrace(expr string) {
	r.Expression = expr
	r.Trace = append(r.Trace, TraceEvent{
		Type: EventExpression,
		Seq:  r.next(),
		Text: expr,
	})
}

// AddSampleTrace records one scalar conversion.
func (r *Result) AddSampleTrace(input, output float64) {
	r.Samples = append(r.Samples, Sample{Input: input, Output: output})
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EventSample,
		Seq:    r.next(),
		Input:  FormatValue(input),
		Output: FormatValue(output),
	})
}

// AddBulkTrace records that a bulk layout was checked.
func (r *Result) AddBulkTrace(layout string) {
	r.Trace = append(r.Trace, TraceEvent{
		Type: EventBulk,
		Seq:  r.next(),
		Text: layout,
	})
}

func (r *Result) next() int64 {
	r.seq++
	return r.seq
}

// FormatValue formats a float64 in the shortest form that parses back to the
// same value.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
