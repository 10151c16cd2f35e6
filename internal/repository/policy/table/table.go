// Package table is a policy channel backed by a fixed question -> response
// table. It stands in for a language model in tests and offline evaluation.
package table

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexdex/internal/domain"
	"github.com/kailas-cloud/lexdex/internal/domain/criterion"
	"github.com/kailas-cloud/lexdex/internal/domain/vendor"
)

// DefaultResponse is returned for questions missing from the table.
const DefaultResponse = "Sorry, I don’t have an answer to that question right now."

var _ domain.PolicyChannel = (*Channel)(nil)

// Channel answers from a table loaded once at construction.
type Channel struct {
	responses map[string]string
	vendor    vendor.Vendor
}

// New creates a table channel. Responses are written in the PCTY vocabulary
// and renamed for other vendors.
func New(responses map[string]string, v vendor.Vendor) *Channel {
	if responses == nil {
		responses = map[string]string{}
	}
	return &Channel{responses: responses, vendor: v}
}

// Load reads a YAML mapping of user prompt -> response.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read policy table %s: %w", path, err)
	}
	var responses map[string]string
	if err := yaml.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("parse policy table %s: %w", path, err)
	}
	return responses, nil
}

// Ask looks up userPrompt. The system prompt is ignored.
func (c *Channel) Ask(_ context.Context, _, userPrompt string) (string, error) {
	resp, ok := c.responses[userPrompt]
	if !ok {
		return DefaultResponse, nil
	}
	if c.vendor == vendor.PCTY {
		return resp, nil
	}
	return criterion.Rename(resp, c.vendor.Vocabulary), nil
}

// HealthCheck always succeeds.
func (c *Channel) HealthCheck(context.Context) error { return nil }

// Len returns the number of table entries.
func (c *Channel) Len() int { return len(c.responses) }
