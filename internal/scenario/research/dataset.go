// Package research implements the deep research demo pipeline: a planner
// decomposes the topic into angles, a researcher gathers and scores sources,
// a synthesizer merges the findings, and a writer produces the cited report.
package research

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/handoff-ai/relay/internal/runctx"
)

//go:embed data.yaml
var rawDataset []byte

// Dataset is the simulated source corpus for one research run.
type Dataset struct {
	Topic   string   `yaml:"topic"`
	Sources []Source `yaml:"sources"`
}

// Source is one searchable document in the corpus.
type Source struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	URL         string   `yaml:"url"`
	Kind        string   `yaml:"kind"`
	Year        int      `yaml:"year"`
	Credibility float64  `yaml:"credibility"`
	Keywords    []string `yaml:"keywords"`
	Summary     string   `yaml:"summary"`
}

// LoadDataset parses the embedded corpus.
func LoadDataset() (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(rawDataset, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse research dataset: %w", err)
	}
	return &ds, nil
}

func dataset(rc *runctx.RunContext) *Dataset {
	ds, _ := rc.Data().(*Dataset)
	return ds
}

// Source looks a source up by ID.
func (d *Dataset) Source(id string) (*Source, bool) {
	for i := range d.Sources {
		if d.Sources[i].ID == id {
			return &d.Sources[i], true
		}
	}
	return nil, false
}
