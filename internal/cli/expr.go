package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/unitconv/internal/chain"
	"github.com/roach88/unitconv/internal/converter"
)

// ExprOptions holds flags for the expr command.
type ExprOptions struct {
	*RootOptions
	Steps    []string
	Variable string
	Max      int // buffer capacity in bytes, negative for unlimited
}

// ExprResult holds the output of the expr command.
type ExprResult struct {
	Kind       string `json:"kind"`
	Expression string `json:"expression"`
	Length     int    `json:"length"` // full length, even when truncated
	Truncated  bool   `json:"truncated,omitempty"`
}

// NewExprCommand creates the expr command.
func NewExprCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExprOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expr",
		Short: "Render the expression of a chain of steps",
		Long: `Render a conversion chain as an infix expression.

With --max N the expression is written into an N byte buffer that keeps one
byte for a terminator, so at most N-1 bytes are shown. The full length is
always reported.

Exit codes:
  0 - Expression rendered
  2 - Command error (invalid step or variable)

Examples:
  unitconv expr --step scale=1.8 --step offset=32
  unitconv expr --step galilean=2,3 --step log=10 --var t
  unitconv expr --step log=10 --step scale=10 --max 6`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpr(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Steps, "step", "s", nil, "conversion step, repeatable (applied in order)")
	cmd.Flags().StringVar(&opts.Variable, "var", "x", "variable name")
	cmd.Flags().IntVar(&opts.Max, "max", -1, "render into a buffer of this many bytes")

	return cmd
}

func runExpr(opts *ExprOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	conv, err := chain.BuildStrings(opts.Steps)
	if err != nil {
		return out.Fail("invalid chain", err)
	}
	defer converter.Release(conv)

	variable := chain.Variable(opts.Variable)
	result := ExprResult{Kind: conv.Kind().String()}

	if opts.Max < 0 {
		expr, err := converter.Format(conv, variable)
		if err != nil {
			return out.Fail("render failed", err)
		}
		result.Expression = expr
		result.Length = len(expr)
		return out.Result(expr, result)
	}

	buf := make([]byte, opts.Max)
	n, err := converter.Expression(conv, buf, variable)
	if err != nil {
		return out.Fail("render failed", err)
	}

	written := 0
	if opts.Max > 0 {
		written = min(n, opts.Max-1)
	}
	result.Expression = string(buf[:written])
	result.Length = n
	result.Truncated = written < n

	text := result.Expression
	if result.Truncated {
		text = fmt.Sprintf("%s (truncated, %d bytes needed)", text, n+1)
	}
	return out.Result(text, result)
}
