package output

import (
	"encoding/json"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// JSONFormatter emits the full run envelope as indented JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(run *domain.SimulationRun) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}
