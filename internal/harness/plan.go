package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan describes a run and the assertions its trace must satisfy.
// Zero-valued run parameters leave the harness defaults in place.
type Plan struct {
	// Name uniquely identifies this plan.
	Name string `yaml:"name"`

	// Description explains what this plan validates.
	Description string `yaml:"description"`

	// Cycles overrides the number of lifecycle cycles.
	Cycles int `yaml:"cycles,omitempty"`

	// Environment overrides the environment tag.
	Environment string `yaml:"environment,omitempty"`

	// Strict stops the run at the first failed cycle.
	Strict *bool `yaml:"strict,omitempty"`

	// Assertions validate the recorded trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Options converts the plan's run parameters into harness options.
func (p *Plan) Options() []Option {
	var opts []Option
	if p.Cycles != 0 {
		opts = append(opts, WithCycles(p.Cycles))
	}
	if p.Environment != "" {
		opts = append(opts, WithEnvironment(p.Environment))
	}
	if p.Strict != nil {
		opts = append(opts, WithStrict(*p.Strict))
	}
	return opts
}

// LoadPlan reads and parses a plan YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan parses plan YAML from memory.
func ParsePlan(data []byte) (*Plan, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var plan Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validatePlan(&plan); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &plan, nil
}

// validatePlan checks that required fields are present and valid.
func validatePlan(p *Plan) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Description == "" {
		return fmt.Errorf("description is required")
	}
	if p.Cycles < 0 {
		return fmt.Errorf("cycles must be >= 0, got %d", p.Cycles)
	}
	if len(p.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range p.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("trace_contains requires op")
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("trace_count requires op")
		}
		if a.Count < 0 {
			return fmt.Errorf("trace_count requires count >= 0")
		}
	case AssertTraceOrder:
		if len(a.Ops) < 2 {
			return fmt.Errorf("trace_order requires at least 2 ops")
		}
	case AssertCycles:
		if a.Count < 0 {
			return fmt.Errorf("cycles requires count >= 0")
		}
	case AssertLifecyclePaired:
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}

	for _, op := range append([]string{a.Op}, a.Ops...) {
		if op != "" && !knownOp(op) {
			return fmt.Errorf("unknown op %q", op)
		}
	}
	return nil
}

func knownOp(op string) bool {
	switch op {
	case OpNewOptions, OpSetEnvironment, OpInit, OpShutdown:
		return true
	}
	return false
}
