// Package browser implements the browser automation demo pipeline: a task
// planner decomposes the goal into steps, the navigator opens pages, the
// interactor proposes clicks and form fills, the extractor pulls the target
// content, and the reporter summarizes the outcome. All browsing is over a
// simulated page graph; interactions are recorded proposals.
package browser

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/handoff-ai/relay/internal/runctx"
)

//go:embed data.yaml
var rawDataset []byte

// Dataset is the simulated site snapshot for one automation run.
type Dataset struct {
	Task  string `yaml:"task"`
	Pages []Page `yaml:"pages"`
}

// Page is one simulated page with its interactive elements.
type Page struct {
	URL      string    `yaml:"url"`
	Title    string    `yaml:"title"`
	Elements []Element `yaml:"elements"`
}

// Element is one addressable element on a page.
type Element struct {
	Selector string `yaml:"selector"`
	Kind     string `yaml:"kind"`
	Text     string `yaml:"text"`
	Target   string `yaml:"target"`
}

// LoadDataset parses the embedded site snapshot.
func LoadDataset() (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(rawDataset, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse browser dataset: %w", err)
	}
	return &ds, nil
}

func dataset(rc *runctx.RunContext) *Dataset {
	ds, _ := rc.Data().(*Dataset)
	return ds
}

// Page looks a page up by URL.
func (d *Dataset) Page(url string) (*Page, bool) {
	for i := range d.Pages {
		if d.Pages[i].URL == url {
			return &d.Pages[i], true
		}
	}
	return nil, false
}

// Element looks an element up on a page by selector.
func (p *Page) Element(selector string) (*Element, bool) {
	for i := range p.Elements {
		if p.Elements[i].Selector == selector {
			return &p.Elements[i], true
		}
	}
	return nil, false
}
