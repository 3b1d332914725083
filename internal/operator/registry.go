package operator

import (
	"slices"

	"github.com/roach88/filtertree/internal/field"
)

// Arity describes the operand shape an operator requires.
type Arity int

const (
	// ArityNone operators take no operand (null and emptiness checks).
	ArityNone Arity = iota
	// AritySingle operators take one scalar operand.
	AritySingle
	// ArityDouble operators take an ordered [min, max] pair.
	ArityDouble
	// ArityArray operators take a list of candidate values.
	ArityArray
	// ArityCustomExpression operators take expression text instead of a value.
	ArityCustomExpression
)

func (a Arity) String() string {
	switch a {
	case ArityNone:
		return "none"
	case AritySingle:
		return "single"
	case ArityDouble:
		return "double"
	case ArityArray:
		return "array"
	case ArityCustomExpression:
		return "custom-expression"
	}
	return "unknown"
}

// Config is one registry row.
type Config struct {
	Operator   Operator
	Label      string
	Arity      Arity
	FieldTypes []field.Type
}

// AppliesTo reports whether the operator is offered for fields of type t.
func (c Config) AppliesTo(t field.Type) bool {
	return slices.Contains(c.FieldTypes, t)
}

var (
	allTypes     = field.AllTypes
	orderedTypes = []field.Type{field.TypeNumber, field.TypeDate}
	textTypes    = []field.Type{field.TypeText}
	setTypes     = []field.Type{field.TypeText, field.TypeNumber, field.TypeSelect, field.TypeMultiSelect}
)

// registry rows in display order.
var registry = []Config{
	{Equal, "equals", AritySingle, allTypes},
	{NotEqual, "does not equal", AritySingle, allTypes},
	{GreaterThan, "is greater than", AritySingle, orderedTypes},
	{LessThan, "is less than", AritySingle, orderedTypes},
	{GreaterOrEqual, "is greater than or equal to", AritySingle, orderedTypes},
	{LessOrEqual, "is less than or equal to", AritySingle, orderedTypes},

	{Contains, "contains", AritySingle, textTypes},
	{NotContains, "does not contain", AritySingle, textTypes},
	{StartsWith, "starts with", AritySingle, textTypes},
	{NotStartsWith, "does not start with", AritySingle, textTypes},
	{EndsWith, "ends with", AritySingle, textTypes},
	{NotEndsWith, "does not end with", AritySingle, textTypes},

	{IsNull, "is null", ArityNone, allTypes},
	{NotNull, "is not null", ArityNone, allTypes},
	{IsEmpty, "is empty", ArityNone, allTypes},
	{NotEmpty, "is not empty", ArityNone, allTypes},

	{Between, "is between", ArityDouble, orderedTypes},
	{NotBetween, "is not between", ArityDouble, orderedTypes},

	{InList, "is one of", ArityArray, setTypes},
	{NotInList, "is not one of", ArityArray, setTypes},

	{CustomExpression, "matches custom expression", ArityCustomExpression, allTypes},
}

var index = func() map[Operator]int {
	m := make(map[Operator]int, len(registry))
	for i, c := range registry {
		m[c.Operator] = i
	}
	return m
}()

// All returns every registry row in display order.
func All() []Config {
	out := make([]Config, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the registry row for op.
func Lookup(op Operator) (Config, bool) {
	i, ok := index[op]
	if !ok {
		return Config{}, false
	}
	return registry[i], true
}

// ForFieldType returns the operators offered for fields of type t.
func ForFieldType(t field.Type) []Operator {
	var ops []Operator
	for _, c := range registry {
		if c.AppliesTo(t) {
			ops = append(ops, c.Operator)
		}
	}
	return ops
}

// ArityOf returns the value arity of op. Unknown operators report ArityNone
// and false.
func ArityOf(op Operator) (Arity, bool) {
	c, ok := Lookup(op)
	return c.Arity, ok
}

// Label returns the display label of op, or the raw token when unknown.
func Label(op Operator) string {
	if c, ok := Lookup(op); ok {
		return c.Label
	}
	return string(op)
}

// RequiresValue reports whether op needs an operand of any shape.
func RequiresValue(op Operator) bool {
	a, ok := ArityOf(op)
	return ok && a != ArityNone
}

// RequiresTwoValues reports whether op needs a [min, max] pair.
func RequiresTwoValues(op Operator) bool {
	a, ok := ArityOf(op)
	return ok && a == ArityDouble
}

// RequiresArray reports whether op needs a list operand.
func RequiresArray(op Operator) bool {
	a, ok := ArityOf(op)
	return ok && a == ArityArray
}

// RequiresCustomExpression reports whether op is driven by expression text.
func RequiresCustomExpression(op Operator) bool {
	a, ok := ArityOf(op)
	return ok && a == ArityCustomExpression
}

// IsNullCheck reports whether op tests presence or emptiness and therefore
// inspects the raw field value before any normalization.
func IsNullCheck(op Operator) bool {
	a, ok := ArityOf(op)
	return ok && a == ArityNone
}

// AppliesTo reports whether op is offered for fields of type t.
func AppliesTo(op Operator, t field.Type) bool {
	c, ok := Lookup(op)
	return ok && c.AppliesTo(t)
}
