package query

import (
	"github.com/google/uuid"

	"github.com/roach88/filtertree/internal/operator"
)

// IDGenerator produces node ids. Implementations must be safe for
// concurrent use.
type IDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 node ids.
//
// UUIDv7 carries 74 random bits per millisecond, so ids minted by separate
// processes or hosts do not collide in practice.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a hyphenated UUIDv7 string.
//
// Panics if the system random source fails (should never happen in practice).
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Factory constructs nodes with ids from its generator.
type Factory struct {
	ids IDGenerator
}

// NewFactory returns a Factory using gen. A nil gen selects UUIDv7Generator.
func NewFactory(gen IDGenerator) *Factory {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &Factory{ids: gen}
}

var defaultFactory = NewFactory(nil)

// Condition returns a new leaf with a fresh id.
func (f *Factory) Condition(fieldPath string, op operator.Operator, value any) *Condition {
	return &Condition{
		ID:       f.ids.NewID(),
		Field:    fieldPath,
		Operator: op,
		Value:    value,
	}
}

// CustomCondition returns a new custom-expression leaf with a fresh id.
func (f *Factory) CustomCondition(fieldPath, expression string) *Condition {
	c := f.Condition(fieldPath, operator.CustomExpression, nil)
	c.CustomExpression = expression
	return c
}

// Group returns a new group with a fresh id. An invalid logical defaults to AND.
func (f *Factory) Group(logical Logical, children ...Node) *Group {
	if !logical.Valid() {
		logical = And
	}
	if children == nil {
		children = []Node{}
	}
	return &Group{
		ID:       f.ids.NewID(),
		Logical:  logical,
		Children: children,
	}
}

// Root returns a new, empty AND root group.
func (f *Factory) Root() *Root {
	return f.Group(And)
}

// NewCondition builds a leaf using the default UUIDv7 factory.
func NewCondition(fieldPath string, op operator.Operator, value any) *Condition {
	return defaultFactory.Condition(fieldPath, op, value)
}

// NewCustomCondition builds a custom-expression leaf using the default factory.
func NewCustomCondition(fieldPath, expression string) *Condition {
	return defaultFactory.CustomCondition(fieldPath, expression)
}

// NewGroup builds a group using the default factory.
func NewGroup(logical Logical, children ...Node) *Group {
	return defaultFactory.Group(logical, children...)
}

// NewRoot builds an empty AND root using the default factory.
func NewRoot() *Root {
	return defaultFactory.Root()
}
