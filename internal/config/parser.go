package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/internal/simulation"
)

// InputParser loads simulation input files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a YAML input file, fills defaults, and validates the
// result. The returned input is ready to hand to the engine.
func (ip *InputParser) LoadFromFile(filename string) (*domain.SimulationInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Load(data)
}

// defaultMonths is the horizon used when a file omits settings.months. An
// explicit zero means a zero-length run and is left alone.
const defaultMonths = 30 * 12

// Load parses and normalizes raw YAML input.
func (ip *InputParser) Load(data []byte) (*domain.SimulationInput, error) {
	var input domain.SimulationInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// A second decode with a pointer field tells an omitted months apart
	// from an explicit months: 0.
	var probe struct {
		Settings struct {
			Months *int `yaml:"months"`
		} `yaml:"settings"`
	}
	if err := yaml.Unmarshal(data, &probe); err == nil && probe.Settings.Months == nil {
		input.Settings.Months = defaultMonths
	}

	Normalize(&input)

	if err := simulation.ValidateInput(&input); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	return &input, nil
}
