// Package chain builds converters from ordered lists of variant steps.
//
// A step names a converter variant and its numeric parameters:
//
//	trivial | inverse | scale=A | offset=B | galilean=A,B | log=BASE | pow=BASE
//
// BASE may be "e". Steps apply in order, so ["scale=1.8", "offset=32"] is
// y = 1.8*x + 32. Steps never name units; resolving unit names is the job of
// the caller.
package chain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/unitconv/internal/converter"
)

// Step is one parsed chain element.
type Step struct {
	Kind      converter.Kind
	Slope     float64 // scale, galilean
	Intercept float64 // offset, galilean
	Base      float64 // log, pow
}

// StepError reports a step that could not be parsed or built.
type StepError struct {
	Index int    // position in the chain, 0-based
	Input string // step text as given, empty for programmatic steps
	Err   error
}

func (e *StepError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("step %d (%q): %v", e.Index, e.Input, e.Err)
	}
	return fmt.Sprintf("step %d: %v", e.Index, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ParseStep parses a single step such as "galilean=1.8,32".
func ParseStep(s string) (Step, error) {
	name, params, hasParams := strings.Cut(strings.TrimSpace(s), "=")
	name = strings.ToLower(strings.TrimSpace(name))

	var args []string
	if hasParams {
		for _, p := range strings.Split(params, ",") {
			args = append(args, strings.TrimSpace(p))
		}
	}

	switch name {
	case "trivial":
		return Step{Kind: converter.KindTrivial}, arity(name, args, 0)
	case "inverse":
		return Step{Kind: converter.KindInverse}, arity(name, args, 0)
	case "scale":
		if err := arity(name, args, 1); err != nil {
			return Step{}, err
		}
		a, err := parseFinite(args[0])
		return Step{Kind: converter.KindScale, Slope: a}, err
	case "offset":
		if err := arity(name, args, 1); err != nil {
			return Step{}, err
		}
		b, err := parseFinite(args[0])
		return Step{Kind: converter.KindOffset, Intercept: b}, err
	case "galilean":
		if err := arity(name, args, 2); err != nil {
			return Step{}, err
		}
		a, err := parseFinite(args[0])
		if err != nil {
			return Step{}, err
		}
		b, err := parseFinite(args[1])
		return Step{Kind: converter.KindGalilean, Slope: a, Intercept: b}, err
	case "log", "pow":
		if err := arity(name, args, 1); err != nil {
			return Step{}, err
		}
		base, err := parseBase(args[0])
		kind := converter.KindLog
		if name == "pow" {
			kind = converter.KindPow
		}
		return Step{Kind: kind, Base: base}, err
	case "":
		return Step{}, fmt.Errorf("empty step")
	}
	return Step{}, fmt.Errorf("unknown step kind %q", name)
}

// ParseSteps parses every step, reporting the first failure as a *StepError.
func ParseSteps(specs []string) ([]Step, error) {
	steps := make([]Step, 0, len(specs))
	for i, s := range specs {
		step, err := ParseStep(s)
		if err != nil {
			return nil, &StepError{Index: i, Input: s, Err: err}
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// String returns the canonical text of the step; ParseStep accepts it.
func (s Step) String() string {
	switch s.Kind {
	case converter.KindScale:
		return "scale=" + formatNumber(s.Slope)
	case converter.KindOffset:
		return "offset=" + formatNumber(s.Intercept)
	case converter.KindGalilean:
		return "galilean=" + formatNumber(s.Slope) + "," + formatNumber(s.Intercept)
	case converter.KindLog, converter.KindPow:
		return s.Kind.String() + "=" + formatBase(s.Base)
	}
	return s.Kind.String()
}

// Converter returns a new owned converter for the step.
func (s Step) Converter() (converter.Converter, error) {
	switch s.Kind {
	case converter.KindTrivial:
		return converter.NewTrivial(), nil
	case converter.KindInverse:
		return converter.NewInverse(), nil
	case converter.KindScale:
		return converter.NewScale(s.Slope), nil
	case converter.KindOffset:
		return converter.NewOffset(s.Intercept), nil
	case converter.KindGalilean:
		return converter.NewGalilean(s.Slope, s.Intercept), nil
	case converter.KindLog:
		return converter.NewLog(s.Base)
	case converter.KindPow:
		return converter.NewPow(s.Base)
	}
	return nil, fmt.Errorf("step kind %s cannot be built directly", s.Kind)
}

// Build combines the steps in order into one converter owned by the caller.
// An empty chain yields the trivial converter. On error nothing is leaked:
// every partially built converter is released.
func Build(steps []Step) (converter.Converter, error) {
	acc := converter.NewTrivial()
	for i, step := range steps {
		c, err := step.Converter()
		if err != nil {
			converter.Release(acc)
			return nil, &StepError{Index: i, Err: err}
		}
		next, err := converter.Combine(acc, c)
		if err != nil {
			converter.Release(acc)
			converter.Release(c)
			return nil, &StepError{Index: i, Err: err}
		}
		acc = next
	}
	return acc, nil
}

// BuildStrings parses and builds a chain in one call.
func BuildStrings(specs []string) (converter.Converter, error) {
	steps, err := ParseSteps(specs)
	if err != nil {
		return nil, err
	}
	return Build(steps)
}

// Variable normalizes a variable name to NFC so that canonically equivalent
// names render to identical expressions.
func Variable(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func arity(name string, args []string, want int) error {
	if len(args) != want {
		return fmt.Errorf("%s takes %d parameter(s), got %d", name, want, len(args))
	}
	return nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("number %q is not finite", s)
	}
	return v, nil
}

func parseBase(s string) (float64, error) {
	if strings.EqualFold(s, "e") {
		return math.E, nil
	}
	return parseFinite(s)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBase(v float64) string {
	if v == math.E {
		return "e"
	}
	return formatNumber(v)
}
