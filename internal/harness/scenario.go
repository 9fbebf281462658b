package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one partition test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the CUE spec directory. LoadScenario resolves it relative to
	// the scenario file.
	Specs string `yaml:"specs"`

	// Pattern is the name of the pattern to partition.
	Pattern string `yaml:"pattern"`

	// Path selects a nested commutative operation by operand indexes from
	// the pattern root. Empty means the root itself.
	Path []int `yaml:"path,omitempty"`

	// Expect lists the expectations checked against the partition.
	Expect Expect `yaml:"expect"`
}

// Expect holds partition expectations. Nil fields are not checked.
type Expect struct {
	Constant          []string                  `yaml:"constant,omitempty"`
	Syntactic         []string                  `yaml:"syntactic,omitempty"`
	Rest              []string                  `yaml:"rest,omitempty"`
	Fixed             map[string]VariableExpect `yaml:"fixed,omitempty"`
	Sequence          map[string]VariableExpect `yaml:"sequence,omitempty"`
	FixedLength       *int                      `yaml:"fixed_length,omitempty"`
	SequenceMinLength *int                      `yaml:"sequence_min_length,omitempty"`

	// Error is the expected partition error code. When set, every other
	// expectation is ignored.
	Error string `yaml:"error,omitempty"`
}

// VariableExpect holds expectations for one aggregated variable.
type VariableExpect struct {
	MinCount     *int     `yaml:"min_count,omitempty"`
	Occurrences  *int     `yaml:"occurrences,omitempty"`
	Multiplicity *int     `yaml:"multiplicity,omitempty"`
	Constraints  []string `yaml:"constraints,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) {
		scenario.Specs = filepath.Join(filepath.Dir(path), scenario.Specs)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files directly under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Specs == "" {
		return fmt.Errorf("specs is required")
	}

	if s.Pattern == "" {
		return fmt.Errorf("pattern is required")
	}

	info, err := os.Stat(s.Specs)
	if os.IsNotExist(err) {
		return fmt.Errorf("specs directory not found: %s", s.Specs)
	}
	if err != nil {
		return fmt.Errorf("specs directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("specs is not a directory: %s", s.Specs)
	}

	for i, idx := range s.Path {
		if idx < 0 {
			return fmt.Errorf("path[%d]: index must be non-negative", i)
		}
	}

	return nil
}
