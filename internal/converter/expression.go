package converter

import (
	"io"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// precedence of a rendered sub-expression. A term is wrapped in parentheses
// when its precedence is below what the enclosing operator requires.
type precedence int

const (
	precSum     precedence = iota + 1 // a+b, a-b, -a*b
	precProduct                       // a*b, a/b
	precAtom                          // x, f(x), (a)
)

type term struct {
	text string
	prec precedence
}

// at returns the term text, parenthesized if its precedence is below want.
func (t term) at(want precedence) string {
	if t.prec < want {
		return "(" + t.text + ")"
	}
	return t.text
}

// Format returns the expression of c with variable substituted for the
// input value, e.g. "2*x+3" for NewGalilean(2, 3) and "x".
//
// Returns an INVALID_ARGUMENT error for an empty variable and a
// FORMATTING_FAILURE error for a variable that is not valid UTF-8.
// Panics if c is nil or released.
func Format(c Converter, variable string) (string, error) {
	mustBeLive(c, "format")
	if variable == "" {
		return "", invalidArgument("format", "variable is empty")
	}
	if !utf8.ValidString(variable) {
		return "", formattingFailure("format", "variable is not valid UTF-8", nil)
	}
	return render(c, variableTerm(variable)).text, nil
}

// Expression writes the expression of c into buf and returns its full length
// in bytes, excluding the terminating NUL.
//
// It behaves like snprintf: if buf is non-empty, at most len(buf)-1 bytes are
// written followed by a NUL byte. A buffer that is too small (including an
// empty or nil one) is not an error; compare the result with len(buf) to
// detect truncation. On error it returns -1 and buf is left untouched.
func Expression(c Converter, buf []byte, variable string) (int, error) {
	s, err := Format(c, variable)
	if err != nil {
		return -1, err
	}
	if len(buf) > 0 {
		k := min(len(s), len(buf)-1)
		copy(buf, s[:k])
		buf[k] = 0
	}
	return len(s), nil
}

// WriteExpression writes the expression of c to w and returns the number of
// bytes written. A write error is reported as a FORMATTING_FAILURE.
func WriteExpression(w io.Writer, c Converter, variable string) (int, error) {
	s, err := Format(c, variable)
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, s)
	if err != nil {
		return n, formattingFailure("format", "write expression", err)
	}
	return n, nil
}

// describe renders c for String. It skips the ownership check so that
// diagnostics never panic.
func describe(c Converter) string {
	return render(c, term{text: "x", prec: precAtom}).text
}

func render(c Converter, v term) term {
	switch c := c.(type) {
	case *Trivial:
		return v
	case *Inverse:
		return term{"1/" + v.at(precAtom), precProduct}
	case *Scale:
		return scaled(c.slope, v)
	case *Offset:
		return term{v.at(precSum) + signed(c.intercept), precSum}
	case *Galilean:
		return term{scaled(c.slope, v).text + signed(c.intercept), precSum}
	case *Log:
		switch c.base {
		case 2:
			return term{"log2(" + v.text + ")", precAtom}
		case math.E:
			return term{"ln(" + v.text + ")", precAtom}
		case 10:
			return term{"log10(" + v.text + ")", precAtom}
		}
		return term{"ln(" + v.text + ")/ln(" + number(c.base) + ")", precProduct}
	case *Pow:
		if c.base == math.E {
			return term{"exp(" + v.text + ")", precAtom}
		}
		return term{"pow(" + number(c.base) + ", " + v.text + ")", precAtom}
	case *Composite:
		return render(c.second, render(c.first, v))
	}
	panic("converter: unknown variant")
}

// scaled renders slope*v. A negative slope is a leading unary minus and so
// binds like a sum.
func scaled(slope float64, v term) term {
	t := term{number(slope) + "*" + v.at(precProduct), precProduct}
	if math.Signbit(slope) {
		t.prec = precSum
	}
	return t
}

// signed renders an intercept as "+b" or "-b".
func signed(b float64) string {
	if math.Signbit(b) {
		return "-" + number(-b)
	}
	return "+" + number(b)
}

// number renders v; infinities render as "Inf" and "-Inf" so that signed
// and scaled never produce a doubled sign.
func number(v float64) string {
	if math.IsInf(v, 1) {
		return "Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// variableTerm classifies a caller-supplied variable. Identifiers, unsigned
// numbers and fully parenthesized text are atoms; anything else may contain
// operators and is treated as a sum.
func variableTerm(v string) term {
	if isIdentifier(v) || isUnsignedNumber(v) || isEnclosed(v) {
		return term{v, precAtom}
	}
	return term{v, precSum}
}

func isIdentifier(s string) bool {
	for _, r := range s {
		if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isUnsignedNumber(s string) bool {
	if s == "" || s[0] == '-' || s[0] == '+' {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// isEnclosed reports whether s is wrapped in one matching pair of parentheses.
func isEnclosed(s string) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}
