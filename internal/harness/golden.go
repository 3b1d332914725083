package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/filtertree/internal/codec"
)

// Snapshot is the golden form of a Result. It leaves out the fingerprint
// and warnings so goldens stay readable.
type Snapshot struct {
	Scenario string   `json:"scenario"`
	Valid    bool     `json:"valid"`
	Codes    []string `json:"codes"`
	Count    int      `json:"count"`
	IDs      []any    `json:"ids"`
	SQL      string   `json:"sql"`
	Text     string   `json:"text"`
}

// NewSnapshot captures result for the named scenario.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		Scenario: name,
		Valid:    result.Valid,
		Codes:    result.Codes,
		Count:    result.Count,
		IDs:      result.IDs,
		SQL:      result.SQL,
		Text:     result.Text,
	}
	if s.Codes == nil {
		s.Codes = []string{}
	}
	if s.IDs == nil {
		s.IDs = []any{}
	}
	return s
}

// RunWithGolden runs a scenario and compares its snapshot with the golden
// file. Use -update to regenerate golden files.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return fmt.Errorf("scenario execution failed: %w", err)
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed: %v", scenario.Name, result.Errors)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the canonical JSON snapshot of result with
// testdata/golden/<name>.golden.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := codec.CanonicalJSON(NewSnapshot(name, result))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
