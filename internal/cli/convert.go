package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/unitconv/internal/chain"
	"github.com/roach88/unitconv/internal/converter"
	"github.com/roach88/unitconv/internal/harness"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Steps   []string
	Float32 bool
}

// ConvertedValue is one converted input.
type ConvertedValue struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ConvertResult holds the output of the convert command.
type ConvertResult struct {
	Expression string           `json:"expression"`
	Float32    bool             `json:"float32,omitempty"`
	Values     []ConvertedValue `json:"values"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <values...>",
		Short: "Convert values through a chain of steps",
		Long: `Build a conversion chain from --step flags and convert every value.

Steps apply in the order given. Values are parsed as floating point numbers;
NaN and Inf are accepted. Put negative values after "--".

Exit codes:
  0 - Values converted
  2 - Command error (invalid step or value)

Examples:
  unitconv convert --step scale=1.8 --step offset=32 100 37
  unitconv convert --step offset=-32 --step scale=0.5555555555555556 -- -40
  unitconv convert --step log=10 --step scale=10 --float32 1000
  unitconv convert --step galilean=1.8,32 --format json 100`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Steps, "step", "s", nil, "conversion step, repeatable (applied in order)")
	cmd.Flags().BoolVar(&opts.Float32, "float32", false, "convert at float32 precision")

	return cmd
}

func runConvert(opts *ConvertOptions, args []string, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	conv, err := chain.BuildStrings(opts.Steps)
	if err != nil {
		return out.Fail("invalid chain", err)
	}
	defer converter.Release(conv)

	inputs := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return out.Fail(fmt.Sprintf("invalid value %q", arg), err)
		}
		inputs[i] = v
	}

	slog.Debug("converting",
		"expression", conv.String(),
		"values", len(inputs),
		"float32", opts.Float32)

	result := ConvertResult{
		Expression: conv.String(),
		Float32:    opts.Float32,
		Values:     make([]ConvertedValue, len(inputs)),
	}

	if opts.Float32 {
		buf := make([]float32, len(inputs))
		for i, v := range inputs {
			buf[i] = float32(v)
			result.Values[i].Input = formatFloat32(buf[i])
		}
		// Converted in place: the result aliases buf.
		if _, err := converter.ApplyFloat32s(conv, buf, buf); err != nil {
			return out.Fail("conversion failed", err)
		}
		for i, v := range buf {
			result.Values[i].Output = formatFloat32(v)
		}
	} else {
		outputs, err := converter.ApplyFloat64s(conv, inputs, make([]float64, len(inputs)))
		if err != nil {
			return out.Fail("conversion failed", err)
		}
		for i, v := range outputs {
			result.Values[i] = ConvertedValue{
				Input:  harness.FormatValue(inputs[i]),
				Output: harness.FormatValue(v),
			}
		}
	}

	var text strings.Builder
	for i, v := range result.Values {
		if i > 0 {
			text.WriteByte('\n')
		}
		fmt.Fprintf(&text, "%s -> %s", v.Input, v.Output)
	}
	return out.Result(text.String(), result)
}

func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
