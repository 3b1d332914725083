package query

import "github.com/roach88/filtertree/internal/operator"

// Builder assembles a tree programmatically.
//
//	root := query.NewBuilder(nil).
//		Where("age", operator.GreaterOrEqual, 18).
//		Or(func(b *query.Builder) {
//			b.Where("name", operator.Contains, "ann").
//				Where("email", operator.IsNull, nil)
//		}).
//		Build()
//
// A Builder is not safe for concurrent use.
type Builder struct {
	factory *Factory
	group   *Group
}

// NewBuilder returns a builder for an AND root. A nil gen selects UUIDv7 ids.
func NewBuilder(gen IDGenerator) *Builder {
	f := NewFactory(gen)
	return &Builder{factory: f, group: f.Root()}
}

// Match sets the connective of the group being built.
func (b *Builder) Match(l Logical) *Builder {
	if l.Valid() {
		b.group.Logical = l
	}
	return b
}

// Where appends a condition.
func (b *Builder) Where(fieldPath string, op operator.Operator, value any) *Builder {
	b.group.Children = append(b.group.Children, b.factory.Condition(fieldPath, op, value))
	return b
}

// Custom appends a custom-expression condition.
func (b *Builder) Custom(fieldPath, expression string) *Builder {
	b.group.Children = append(b.group.Children, b.factory.CustomCondition(fieldPath, expression))
	return b
}

// And appends a nested AND group populated by fn.
func (b *Builder) And(fn func(*Builder)) *Builder {
	return b.nest(And, fn)
}

// Or appends a nested OR group populated by fn.
func (b *Builder) Or(fn func(*Builder)) *Builder {
	return b.nest(Or, fn)
}

func (b *Builder) nest(l Logical, fn func(*Builder)) *Builder {
	child := &Builder{factory: b.factory, group: b.factory.Group(l)}
	if fn != nil {
		fn(child)
	}
	b.group.Children = append(b.group.Children, child.group)
	return b
}

// Build returns a copy of the tree, so the builder may keep being used.
func (b *Builder) Build() *Group {
	return Clone(b.group)
}
