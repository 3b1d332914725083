package query

import (
	"fmt"
	"strings"

	"github.com/roach88/filtertree/internal/operator"
)

// Kind is the node discriminant used by the interchange format.
type Kind string

const (
	KindCondition Kind = "condition"
	KindGroup     Kind = "group"
)

// Logical is the boolean connective of a Group.
type Logical string

const (
	And Logical = "AND"
	Or  Logical = "OR"
)

// Valid reports whether l is AND or OR.
func (l Logical) Valid() bool {
	return l == And || l == Or
}

// ParseLogical accepts "and"/"or" in any case.
func ParseLogical(s string) (Logical, error) {
	l := Logical(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown logical operator %q", s)
	}
	return l, nil
}

// UnmarshalText rejects anything other than AND/OR.
func (l *Logical) UnmarshalText(data []byte) error {
	parsed, err := ParseLogical(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Node is a tree node. This is a sealed interface - only *Condition and
// *Group implement it.
type Node interface {
	NodeID() string
	Kind() Kind
	queryNode() // Marker method - seals interface to this package
}

// Condition is a leaf testing one field against one operator and value.
//
// Field is a dot-path ("address.city"). The shape of Value follows the
// operator's arity: absent for null checks, a scalar for single-value
// operators, a two-element [min, max] slice for range operators and a
// slice for list operators. CustomExpression is only read when Operator is
// operator.CustomExpression.
type Condition struct {
	ID               string
	Field            string
	Operator         operator.Operator
	Value            any
	CustomExpression string
}

// NodeID returns the id; a nil condition has none.
func (c *Condition) NodeID() string {
	if c == nil {
		return ""
	}
	return c.ID
}

func (*Condition) Kind() Kind { return KindCondition }
func (*Condition) queryNode() {}

// Group combines its ordered children with Logical.
// Children holds only *Condition and *Group values.
type Group struct {
	ID       string
	Logical  Logical
	Children []Node
}

// NodeID returns the id; a nil group has none.
func (g *Group) NodeID() string {
	if g == nil {
		return ""
	}
	return g.ID
}

func (*Group) Kind() Kind { return KindGroup }
func (*Group) queryNode() {}

// Root is the tree root. It is always a Group.
type Root = Group
