// Package operator is the authoritative table of condition operators.
//
// Every operator has exactly one row in the registry giving its display
// label, its value arity, and the field types it is offered for. The
// validator and the evaluation engine both classify operators through this
// package; neither keeps its own list of value-less operators.
package operator

import (
	"fmt"
	"strings"
)

// Operator is a closed set of comparison tokens. The zero value is invalid.
type Operator string

const (
	Equal          Operator = "="
	NotEqual       Operator = "!="
	GreaterThan    Operator = ">"
	LessThan       Operator = "<"
	GreaterOrEqual Operator = ">="
	LessOrEqual    Operator = "<="

	Contains      Operator = "contains"
	NotContains   Operator = "not-contains"
	StartsWith    Operator = "starts-with"
	NotStartsWith Operator = "not-starts-with"
	EndsWith      Operator = "ends-with"
	NotEndsWith   Operator = "not-ends-with"

	IsNull   Operator = "is-null"
	NotNull  Operator = "not-null"
	IsEmpty  Operator = "is-empty"
	NotEmpty Operator = "not-empty"

	Between    Operator = "between"
	NotBetween Operator = "not-between"

	InList    Operator = "in-list"
	NotInList Operator = "not-in-list"

	CustomExpression Operator = "custom-expression"
)

// Valid reports whether op has a registry row.
func (op Operator) Valid() bool {
	_, ok := index[op]
	return ok
}

func (op Operator) String() string {
	return string(op)
}

// Parse converts a token into an Operator, rejecting unknown tokens.
func Parse(s string) (Operator, error) {
	op := Operator(strings.TrimSpace(s))
	if !op.Valid() {
		return "", fmt.Errorf("unknown operator %q", s)
	}
	return op, nil
}

// UnmarshalText rejects unknown operator tokens at decode time.
func (op *Operator) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// MarshalText encodes the operator token.
func (op Operator) MarshalText() ([]byte, error) {
	return []byte(op), nil
}
