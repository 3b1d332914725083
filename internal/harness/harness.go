package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/filtertree/internal/codec"
	"github.com/roach88/filtertree/internal/engine"
	"github.com/roach88/filtertree/internal/query"
	"github.com/roach88/filtertree/internal/querysql"
	"github.com/roach88/filtertree/internal/querytext"
)

// Harness runs scenarios with a fixed engine configuration.
type Harness struct {
	logger     *slog.Logger
	engineOpts []engine.Option
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger routes engine diagnostics to l. Scenarios run silently by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithEngineOptions passes extra options to every engine the harness
// creates.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(h *Harness) {
		h.engineOpts = append(h.engineOpts, opts...)
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run executes a scenario and checks its expectations.
//
// The returned error covers problems with the scenario itself (an
// undecodable query, a failing SQLite check). Unmet expectations are
// reported through Result.Pass and Result.Errors.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	if scenario == nil {
		return nil, errors.New("scenario is nil")
	}

	root, err := scenario.Root()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	fields := scenario.FieldSet()
	result := NewResult()

	validation := query.Validate(root, fields)
	result.Valid = validation.IsValid
	for _, issue := range validation.Issues {
		result.Codes = append(result.Codes, issue.Code)
	}
	result.Warnings = validation.Warnings

	result.SQL = querysql.Compile(root, scenario.Table)
	result.Text = querytext.Compile(root, fields)
	result.Fingerprint, err = codec.Fingerprint(root, codec.IgnoreIDs())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: fingerprint: %w", scenario.Name, err)
	}

	// Invalid trees are not evaluated.
	if validation.IsValid {
		opts := append([]engine.Option{engine.WithLogger(h.logger)}, h.engineOpts...)
		eng := engine.New[map[string]any](fields, opts...)

		res := eng.Execute(scenario.Records, root)
		if !res.Success {
			result.AddError(fmt.Sprintf("execute failed: %s", res.Error))
		} else {
			result.Count = res.FilteredCount
			result.IDs = recordIDs(res.Data)

			if scenario.SQLCheck {
				ids, err := sqlIDs(scenario, root)
				if err != nil {
					return nil, fmt.Errorf("scenario %s: sql check: %w", scenario.Name, err)
				}
				result.SQLIDs = ids
				if !sameIDs(ids, result.IDs) {
					result.AddError(fmt.Sprintf("sql selected %v, engine matched %v", ids, result.IDs))
				}
			}
		}
	}

	for _, failure := range checkExpect(scenario.Expect, result) {
		result.AddError(failure.Error())
	}

	return result, nil
}

func recordIDs(records []map[string]any) []any {
	ids := make([]any, 0, len(records))
	for _, r := range records {
		ids = append(ids, r["id"])
	}
	return ids
}
