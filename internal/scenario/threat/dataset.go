// Package threat implements the cybersecurity threat detection demo
// pipeline: alert intake reviews the security events, the auth and network
// analyzers dig into their telemetry, threat intel enriches the indicators,
// containment proposes scoped response actions, and the SOC reporter writes
// the analyst summary.
package threat

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/handoff-ai/relay/internal/runctx"
)

//go:embed data.yaml
var rawDataset []byte

// Dataset is the simulated SOC telemetry snapshot for one run.
type Dataset struct {
	Events []SecurityEvent `yaml:"events"`
	Auth   []AuthEvent     `yaml:"auth"`
	Flows  []NetworkFlow   `yaml:"flows"`
	IOCs   []Indicator     `yaml:"iocs"`
	Alert  string          `yaml:"alert"`
}

// SecurityEvent is one raw SIEM event.
type SecurityEvent struct {
	ID       string `yaml:"id"`
	Source   string `yaml:"source"`
	Severity string `yaml:"severity"`
	Summary  string `yaml:"summary"`
}

// AuthEvent is one authentication log entry.
type AuthEvent struct {
	User    string `yaml:"user"`
	SourceIP string `yaml:"source_ip"`
	Outcome string `yaml:"outcome"`
	Count   int    `yaml:"count"`
}

// NetworkFlow is one aggregated outbound network flow.
type NetworkFlow struct {
	SourceHost string `yaml:"source_host"`
	DestIP     string `yaml:"dest_ip"`
	DestPort   int    `yaml:"dest_port"`
	BytesOut   int64  `yaml:"bytes_out"`
	Periodic   bool   `yaml:"periodic"`
}

// Indicator is one threat-intelligence indicator of compromise.
type Indicator struct {
	Value      string `yaml:"value"`
	Type       string `yaml:"type"`
	Campaign   string `yaml:"campaign"`
	Confidence string `yaml:"confidence"`
}

// LoadDataset parses the embedded snapshot.
func LoadDataset() (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(rawDataset, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse threat dataset: %w", err)
	}
	return &ds, nil
}

func dataset(rc *runctx.RunContext) *Dataset {
	ds, _ := rc.Data().(*Dataset)
	return ds
}

// Indicator looks up an IOC by value.
func (d *Dataset) Indicator(value string) (*Indicator, bool) {
	for i := range d.IOCs {
		if d.IOCs[i].Value == value {
			return &d.IOCs[i], true
		}
	}
	return nil, false
}
