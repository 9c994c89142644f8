// Package incident implements the AIOps incident response demo pipeline:
// triage assesses the active alerts, the log analyzer digs into service
// logs, root cause correlates the evidence, remediation proposes a safe fix,
// and the reporter writes the incident report.
package incident

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/handoff-ai/relay/internal/runctx"
)

//go:embed data.yaml
var rawDataset []byte

// Dataset is the simulated monitoring snapshot for one incident run.
type Dataset struct {
	Alerts   []Alert    `yaml:"alerts"`
	Logs     []LogLine  `yaml:"logs"`
	Metrics  []Metric   `yaml:"metrics"`
	Incident string     `yaml:"incident"`
}

// Alert is one firing monitoring alert.
type Alert struct {
	ID       string `yaml:"id"`
	Service  string `yaml:"service"`
	Severity string `yaml:"severity"`
	Summary  string `yaml:"summary"`
	Status   string `yaml:"status"`
}

// LogLine is one simulated service log entry.
type LogLine struct {
	Service string `yaml:"service"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
}

// Metric is one service metric reading with its steady-state baseline.
type Metric struct {
	Service  string  `yaml:"service"`
	Name     string  `yaml:"name"`
	Value    float64 `yaml:"value"`
	Baseline float64 `yaml:"baseline"`
}

// LoadDataset parses the embedded snapshot.
func LoadDataset() (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(rawDataset, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse incident dataset: %w", err)
	}
	return &ds, nil
}

func dataset(rc *runctx.RunContext) *Dataset {
	ds, _ := rc.Data().(*Dataset)
	return ds
}

// ActiveAlerts returns the alerts still firing.
func (d *Dataset) ActiveAlerts() []Alert {
	var active []Alert
	for _, a := range d.Alerts {
		if a.Status == "firing" {
			active = append(active, a)
		}
	}
	return active
}
