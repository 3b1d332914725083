package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/filtertree/internal/codec"
	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/query"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table qualifies compiled SQL columns. Empty leaves them unqualified.
	Table string `yaml:"table,omitempty"`

	// SQLCheck runs the compiled SQL against the records in SQLite.
	SQLCheck bool `yaml:"sql_check,omitempty"`

	Fields  []field.Definition `yaml:"fields"`
	Records []map[string]any   `yaml:"records"`

	// Query is a group node or a versioned envelope, in interchange form.
	Query map[string]any `yaml:"query"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the expected outcome. Unset keys are not checked.
type Expect struct {
	Valid  *bool    `yaml:"valid,omitempty"`
	Errors []string `yaml:"errors,omitempty"`
	Count  *int     `yaml:"count,omitempty"`
	IDs    []any    `yaml:"ids,omitempty"`
	SQL    string   `yaml:"sql,omitempty"`
	Text   string   `yaml:"text,omitempty"`
}

// Load reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario document.
func Parse(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FieldSet returns the scenario's fields as a set.
func (s *Scenario) FieldSet() *field.Set {
	return field.NewSet(s.Fields...)
}

// Root decodes the scenario query. Bare groups are accepted.
func (s *Scenario) Root() (*query.Group, error) {
	data, err := json.Marshal(s.Query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	root, err := codec.DecodeJSON(data, codec.AllowUnversioned())
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return root, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Fields) == 0 {
		return errors.New("fields list is required and must be non-empty")
	}
	for i, def := range s.Fields {
		if def.Key == "" {
			return fmt.Errorf("fields[%d]: key is required", i)
		}
		if !def.Type.Valid() {
			return fmt.Errorf("fields[%d]: type is required", i)
		}
	}
	if len(s.Query) == 0 {
		return errors.New("query is required")
	}
	if s.Expect.Count != nil && *s.Expect.Count < 0 {
		return errors.New("expect.count must be non-negative")
	}
	if len(s.Expect.IDs) > 0 || s.SQLCheck {
		for i, r := range s.Records {
			if _, ok := r["id"]; !ok {
				return fmt.Errorf("records[%d]: id is required when matching by id", i)
			}
		}
	}
	return nil
}
