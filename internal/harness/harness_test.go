package harness

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filtertree/internal/field"
)

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func peopleScenario() *Scenario {
	return &Scenario{
		Name:  "people",
		Table: "people",
		Fields: []field.Definition{
			{Key: "id", Title: "ID", Type: field.TypeNumber},
			{Key: "name", Title: "Name", Type: field.TypeText},
			{Key: "age", Title: "Age", Type: field.TypeNumber},
			{Key: "active", Title: "Active", Type: field.TypeBoolean},
		},
		Records: []map[string]any{
			{"id": 1, "name": "Ann", "age": 17, "active": true},
			{"id": 2, "name": "Bo", "age": 42, "active": false},
			{"id": 3, "name": "Cyrus", "age": nil, "active": true},
		},
		Query: map[string]any{
			"id":    "root",
			"type":  "group",
			"logic": "AND",
			"children": []any{
				map[string]any{"id": "c1", "type": "condition", "field": "active", "operator": "=", "value": true},
			},
		},
	}
}

func TestRun_Passes(t *testing.T) {
	s := peopleScenario()
	s.SQLCheck = true
	s.Expect = Expect{Valid: boolPtr(true), Count: intPtr(2), IDs: []any{1, 3}}

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Codes)
	assert.Equal(t, []any{1, 3}, result.IDs)
	assert.Equal(t, []any{1, 3}, result.SQLIDs)
	assert.Equal(t, `"people"."active" = TRUE`, result.SQL)
	assert.Equal(t, "Active equals true", result.Text)
	assert.Len(t, result.Fingerprint, 64)
}

func TestRun_ReportsUnmetExpectations(t *testing.T) {
	s := peopleScenario()
	s.Expect = Expect{
		Valid: boolPtr(false),
		Count: intPtr(5),
		IDs:   []any{3, 1},
		SQL:   "1=1",
		Text:  "nothing",
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "expect.valid")
	assert.Contains(t, result.Errors[1], "expect.count: expected 5, got 2")
	assert.Contains(t, result.Errors[2], "expect.ids")
	assert.Contains(t, result.Errors[3], "expect.sql")
	assert.Contains(t, result.Errors[4], "expect.text")
}

func TestRun_InvalidTreeIsNotEvaluated(t *testing.T) {
	s := peopleScenario()
	s.Query["children"] = []any{
		map[string]any{"id": "c1", "type": "condition", "field": "salary", "operator": ">", "value": 1},
	}
	s.SQLCheck = true
	s.Expect = Expect{Valid: boolPtr(false), Errors: []string{"E203"}}

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, []string{"E203"}, result.Codes)
	assert.Empty(t, result.IDs)
	assert.Nil(t, result.SQLIDs)
	assert.Zero(t, result.Count)
}

func TestRun_SQLCheckCoversOperators(t *testing.T) {
	children := map[string]map[string]any{
		"between":     {"field": "age", "operator": "between", "value": []any{18, 50}},
		"not in list": {"field": "name", "operator": "not-in-list", "value": []any{"Bo"}},
		"starts with": {"field": "name", "operator": "starts-with", "value": "cy"},
		"is null":     {"field": "age", "operator": "is-null"},
		"not equal":   {"field": "age", "operator": "!=", "value": 17},
	}

	for name, child := range children {
		t.Run(name, func(t *testing.T) {
			s := peopleScenario()
			s.SQLCheck = true
			child["id"] = "c1"
			child["type"] = "condition"
			s.Query["children"] = []any{child}

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "%s: %v", result.SQL, result.Errors)
		})
	}
}

func TestRun_WarningsAreKept(t *testing.T) {
	s := peopleScenario()
	s.Query["children"] = []any{
		map[string]any{"id": "c1", "type": "condition", "field": "name", "operator": ">", "value": "B"},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `operator ">" is not offered for text field "name"`)
}

func TestRun_NilScenario(t *testing.T) {
	_, err := Run(nil)
	require.Error(t, err)
}

func TestRun_UndecodableQuery(t *testing.T) {
	s := peopleScenario()
	s.Query = map[string]any{"type": "condition", "id": "c"}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario people")
}

func TestHarness_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := New(WithLogger(logger)).Run(peopleScenario())
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Contains(t, buf.String(), "query executed")
}

func TestRun_ScenarioFiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := Load(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
		})
	}
}
