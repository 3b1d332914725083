package engine

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/filtertree/internal/expr"
	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/query"
)

// DefaultMaxDepth is the deepest group nesting the engine evaluates.
const DefaultMaxDepth = query.DefaultMaxDepth

// DefaultDateLayouts are tried in order when a date field holds a string.
var DefaultDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Result is the outcome of Execute.
type Result[T any] struct {
	Success       bool   `json:"success"`
	Data          []T    `json:"data"`
	Error         string `json:"error,omitempty"`
	TotalCount    int    `json:"totalCount"`
	FilteredCount int    `json:"filteredCount"`
}

// Engine filters records of type T. Records may be maps with string keys,
// structs, or pointers to either.
type Engine[T any] struct {
	fields      *field.Set
	logger      *slog.Logger
	maxDepth    int
	locale      language.Tag
	dateLayouts []string
}

// settings collects options before the generic Engine is built.
type settings struct {
	logger      *slog.Logger
	maxDepth    int
	locale      language.Tag
	dateLayouts []string
}

// Option configures an Engine.
type Option func(*settings)

// WithLogger sets the logger for soft failures. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxDepth sets the nesting limit. Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithLocale sets the collation locale for ordering text values.
// Default: English.
func WithLocale(tag language.Tag) Option {
	return func(s *settings) {
		s.locale = tag
	}
}

// WithDateLayouts replaces DefaultDateLayouts.
func WithDateLayouts(layouts ...string) Option {
	return func(s *settings) {
		if len(layouts) > 0 {
			s.dateLayouts = append([]string(nil), layouts...)
		}
	}
}

// New creates an Engine for the given field set. Conditions on fields not
// in the set compare their raw values without normalization.
func New[T any](fields *field.Set, opts ...Option) *Engine[T] {
	s := settings{
		maxDepth:    DefaultMaxDepth,
		locale:      language.English,
		dateLayouts: DefaultDateLayouts,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return &Engine[T]{
		fields:      fields,
		logger:      s.logger,
		maxDepth:    s.maxDepth,
		locale:      s.locale,
		dateLayouts: s.dateLayouts,
	}
}

// Execute filters records by root.
//
// A root without children returns records unchanged. Records are kept in
// their original order. Execute never panics: a tree deeper than the
// maximum depth, a nil root and any recovered panic produce
// Success=false with Error set.
func (e *Engine[T]) Execute(records []T, root *query.Group) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Value: r}
			e.logger.Error("execute failed", "error", err)
			res = Result[T]{Success: false, Error: err.Error()}
		}
	}()

	if root == nil {
		return Result[T]{Success: false, Error: ErrNilRoot.Error()}
	}

	total := len(records)
	if records == nil {
		records = []T{}
	}
	if len(root.Children) == 0 {
		return Result[T]{Success: true, Data: records, TotalCount: total, FilteredCount: total}
	}

	if err := e.checkDepth(root); err != nil {
		e.logger.Warn("query rejected", "root_id", root.ID, "error", err)
		return Result[T]{Success: false, Error: err.Error()}
	}

	ev := e.newEvaluation()
	data := make([]T, 0, total)
	for i := range records {
		ok, err := ev.group(records[i], root, 1)
		if err != nil {
			return Result[T]{Success: false, Error: fmt.Sprintf("record %d: %v", i, err)}
		}
		if ok {
			data = append(data, records[i])
		}
	}

	e.logger.Debug("query executed",
		"root_id", root.ID,
		"total", total,
		"filtered", len(data))

	return Result[T]{Success: true, Data: data, TotalCount: total, FilteredCount: len(data)}
}

// Matches reports whether record passes root.
func (e *Engine[T]) Matches(record T, root *query.Group) (bool, error) {
	if root == nil {
		return false, ErrNilRoot
	}
	return e.EvaluateGroup(record, root)
}

// EvaluateGroup folds g's children against record. An empty group is true.
// The only error is a nesting depth beyond the engine's limit.
func (e *Engine[T]) EvaluateGroup(record T, g *query.Group) (bool, error) {
	if g == nil {
		return true, nil
	}
	if err := e.checkDepth(g); err != nil {
		return false, err
	}
	return e.newEvaluation().group(record, g, 1)
}

// EvaluateCondition tests one condition against record. Soft failures
// yield false.
func (e *Engine[T]) EvaluateCondition(record T, c *query.Condition) bool {
	if c == nil {
		return false
	}
	return e.newEvaluation().condition(record, c)
}

func (e *Engine[T]) checkDepth(g *query.Group) error {
	if depth := query.Depth(g); depth > e.maxDepth {
		return depthError(depth, e.maxDepth)
	}
	return nil
}

func (e *Engine[T]) newEvaluation() *evaluation {
	return &evaluation{
		fields:      e.fields,
		logger:      e.logger,
		maxDepth:    e.maxDepth,
		dateLayouts: e.dateLayouts,
		collator:    collate.New(e.locale),
		folder:      cases.Fold(),
		exprs:       make(map[string]*expr.Expression),
	}
}

// evaluation holds per-call state. collate.Collator and cases.Caser keep
// internal buffers, so an evaluation must not be shared between goroutines.
type evaluation struct {
	fields      *field.Set
	logger      *slog.Logger
	maxDepth    int
	dateLayouts []string
	collator    *collate.Collator
	folder      cases.Caser
	exprs       map[string]*expr.Expression
}

func (ev *evaluation) group(record any, g *query.Group, depth int) (bool, error) {
	if depth > ev.maxDepth {
		return false, depthError(depth, ev.maxDepth)
	}
	if len(g.Children) == 0 {
		return true, nil
	}

	for _, child := range g.Children {
		var (
			ok  bool
			err error
		)
		switch n := child.(type) {
		case *query.Condition:
			if n == nil {
				continue
			}
			ok = ev.condition(record, n)
		case *query.Group:
			if n == nil {
				continue
			}
			ok, err = ev.group(record, n, depth+1)
			if err != nil {
				return false, err
			}
		default:
			continue
		}

		if g.Logical == query.Or && ok {
			return true, nil
		}
		if g.Logical != query.Or && !ok {
			return false, nil
		}
	}

	// AND saw no false child; OR saw no true child.
	return g.Logical != query.Or, nil
}
