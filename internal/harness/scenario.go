package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/unitconv/internal/chain"
)

// DefaultTolerance is the relative tolerance used when a case sets none.
const DefaultTolerance = 1e-12

// Scenario defines a conformance test scenario for one converter chain.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Variable is the name substituted into the expression. Defaults to "x".
	Variable string `yaml:"variable,omitempty" json:"variable,omitempty"`

	// Steps is the chain, applied in order. See package chain for syntax.
	Steps []string `yaml:"steps" json:"steps"`

	// Expression, if set, must equal the rendered expression exactly.
	Expression string `yaml:"expression,omitempty" json:"expression,omitempty"`

	// Float32 also checks every case through the float32 entry point.
	Float32 bool `yaml:"float32,omitempty" json:"float32,omitempty"`

	// Bulk also checks the cases through slice conversion, including
	// in-place and overlapping layouts.
	Bulk bool `yaml:"bulk,omitempty" json:"bulk,omitempty"`

	Cases []Case `yaml:"cases" json:"cases"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-" json:"-"`
}

// Case is one input and its expected output.
type Case struct {
	Input float64 `yaml:"input" json:"input"`

	// Expect is the expected output. A nil Expect records the sample
	// without checking it.
	Expect *float64 `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Tolerance is relative to max(1, |expect|). Zero means DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty"`
}

// VariableName returns the NFC-normalized variable, or "x" when unset.
func (s *Scenario) VariableName() string {
	if v := chain.Variable(s.Variable); v != "" {
		return v
	}
	return "x"
}

// Inputs returns the case inputs in order.
func (s *Scenario) Inputs() []float64 {
	inputs := make([]float64, len(s.Cases))
	for i, c := range s.Cases {
		inputs[i] = c.Input
	}
	return inputs
}

// LoadScenario reads and parses a scenario file. The format is chosen by
// extension: .yaml and .yml are YAML, .cue is CUE.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		scenario, err = decodeYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".cue":
		scenario, err = decodeCUE(data, path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CUE: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario extension %q", ext)
	}
	scenario.Path = path

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// IsScenarioFile reports whether LoadScenario accepts the file's extension.
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

func decodeYAML(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "case:" vs "cases:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if _, err := chain.ParseSteps(s.Steps); err != nil {
		return fmt.Errorf("steps: %w", err)
	}

	for i, c := range s.Cases {
		if c.Tolerance < 0 {
			return fmt.Errorf("cases[%d]: tolerance must be non-negative", i)
		}
	}

	return nil
}
