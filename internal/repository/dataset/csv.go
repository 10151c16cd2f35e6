// Package dataset loads labelled evaluation examples from CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexdex/internal/domain/evaluation"
)

// Column names in the header row.
const (
	ColQuestion             = "question"
	ColBackground           = "user_background"
	ColExpectedResponseType = "expected_response_type"
	ColExpectedResponse     = "expected_response"
)

var requiredColumns = []string{ColQuestion, ColBackground, ColExpectedResponseType, ColExpectedResponse}

// LoadFile reads a CSV dataset from path.
func LoadFile(path string) ([]evaluation.Example, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load reads a CSV dataset with a header row. Columns are matched by name;
// extra columns are ignored.
func Load(r io.Reader) ([]evaluation.Example, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []evaluation.Example
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		field := func(name string) string {
			if i := cols[name]; i < len(rec) {
				return rec[i]
			}
			return ""
		}
		bg, err := ParseBackground(field(ColBackground))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ex := evaluation.Example{
			Question:             field(ColQuestion),
			Background:           bg,
			ExpectedResponseType: strings.TrimSpace(field(ColExpectedResponseType)),
			ExpectedResponse:     field(ColExpectedResponse),
		}
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, ex)
	}
	return out, nil
}

// ParseBackground decodes a flow mapping such as {'state': 'california'} or
// {"state": "california"}. Scalar values are kept as their literal text.
// Blank input yields an empty map.
func ParseBackground(s string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(s), &node); err != nil {
		return nil, fmt.Errorf("parse background %q: %w", s, err)
	}
	if len(node.Content) == 0 {
		return out, nil
	}
	m := node.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("background %q is not a mapping", s)
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("background key %q: nested values are not supported", k.Value)
		}
		out[k.Value] = v.Value
	}
	return out, nil
}
