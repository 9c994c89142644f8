// Package support implements the customer support demo pipeline: an intake
// router classifies a ticket and hands it to a specialist (order, billing,
// technical, or escalation), who investigates with scoped tools and hands a
// summary to the resolution desk for the final customer reply.
package support

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/handoff-ai/relay/internal/runctx"
)

//go:embed data.yaml
var rawDataset []byte

// Dataset is the simulated support-desk snapshot for one run. It is
// read-only by contract; tools record proposed actions on the run context
// instead of mutating it.
type Dataset struct {
	Customers []Customer   `yaml:"customers"`
	Orders    []Order      `yaml:"orders"`
	Invoices  []Invoice    `yaml:"invoices"`
	Articles  []KBArticle  `yaml:"articles"`
	Ticket    Ticket       `yaml:"ticket"`
}

// Customer is one customer profile.
type Customer struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Tier        string  `yaml:"tier"`
	AccountAge  int     `yaml:"account_age_months"`
	TotalSpend  float64 `yaml:"total_spend"`
	Notes       string  `yaml:"notes"`
}

// Order is one order record with optional shipment info.
type Order struct {
	ID             string   `yaml:"id"`
	CustomerID     string   `yaml:"customer_id"`
	Status         string   `yaml:"status"`
	Items          []string `yaml:"items"`
	Total          float64  `yaml:"total"`
	TrackingNumber string   `yaml:"tracking_number"`
	ShipmentStatus string   `yaml:"shipment_status"`
}

// Invoice is one billing record.
type Invoice struct {
	ID         string  `yaml:"id"`
	CustomerID string  `yaml:"customer_id"`
	Amount     float64 `yaml:"amount"`
	Status     string  `yaml:"status"`
	Note       string  `yaml:"note"`
}

// KBArticle is one knowledge-base entry for technical support.
type KBArticle struct {
	ID      string   `yaml:"id"`
	Title   string   `yaml:"title"`
	Tags    []string `yaml:"tags"`
	Summary string   `yaml:"summary"`
}

// Ticket is the inbound support request that starts the run.
type Ticket struct {
	CustomerID string `yaml:"customer_id"`
	Message    string `yaml:"message"`
}

// LoadDataset parses the embedded snapshot.
func LoadDataset() (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(rawDataset, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse support dataset: %w", err)
	}
	return &ds, nil
}

// dataset extracts the snapshot from a run context.
func dataset(rc *runctx.RunContext) *Dataset {
	ds, _ := rc.Data().(*Dataset)
	return ds
}

// Customer looks a customer up by ID.
func (d *Dataset) Customer(id string) (*Customer, bool) {
	for i := range d.Customers {
		if d.Customers[i].ID == id {
			return &d.Customers[i], true
		}
	}
	return nil, false
}

// Order looks an order up by ID.
func (d *Dataset) Order(id string) (*Order, bool) {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return &d.Orders[i], true
		}
	}
	return nil, false
}

// Invoice looks an invoice up by ID.
func (d *Dataset) Invoice(id string) (*Invoice, bool) {
	for i := range d.Invoices {
		if d.Invoices[i].ID == id {
			return &d.Invoices[i], true
		}
	}
	return nil, false
}
