// Package evaluation holds labelled admission examples.
package evaluation

import "fmt"

// Expected response types.
const (
	Positive = "positive"
	Negative = "negative"
)

// Example is one labelled question.
type Example struct {
	Question             string            `yaml:"question"`
	Background           map[string]string `yaml:"user_background,omitempty"`
	ExpectedResponseType string            `yaml:"expected_response_type"`
	ExpectedResponse     string            `yaml:"expected_response"`
}

// Validate checks that the example can be scored.
func (e Example) Validate() error {
	if e.Question == "" {
		return fmt.Errorf("question is required")
	}
	return nil
}
