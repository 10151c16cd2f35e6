package ranking

import "fmt"

// Selection is the rule used to pick the "top" row out of a ranking table.
type Selection string

// Selection rules.
const (
	// Position sorts ascending by similarity (stable) and then picks the row
	// that sat at position 0 before the sort, i.e. doc index 0. This is the
	// historical behaviour and stays the default until the product owner
	// decides otherwise.
	Position Selection = "position"
	// Similarity sorts descending by similarity (stable) and picks the first row.
	Similarity Selection = "similarity"
)

// ParseSelection validates a configured selection rule. Empty selects Position.
func ParseSelection(s string) (Selection, error) {
	if s == "" {
		return Position, nil
	}
	sel := Selection(s)
	if !sel.IsValid() {
		return "", fmt.Errorf("invalid ranking selection: %q", s)
	}
	return sel, nil
}

// IsValid checks if the selection is one of the supported values.
func (s Selection) IsValid() bool {
	return s == Position || s == Similarity
}
