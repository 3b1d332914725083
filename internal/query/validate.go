package query

import (
	"fmt"
	"strings"

	"github.com/roach88/filtertree/internal/expr"
	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/operator"
)

// DefaultMaxDepth is the deepest group nesting Validate accepts.
const DefaultMaxDepth = 10

// Validation error codes (E200-E299)
const (
	ErrCodeNilRoot         = "E200" // tree has no root group
	ErrCodeMaxDepth        = "E201" // nesting deeper than the limit
	ErrCodeEmptyGroup      = "E202" // group with no children
	ErrCodeUnknownField    = "E203" // condition field not in the field set
	ErrCodeUnknownOperator = "E204" // operator token has no registry row
	ErrCodeMissingValue    = "E205" // operator needs a value but has none
	ErrCodeMalformedRange  = "E206" // range operand is not a [min, max] pair
	ErrCodeMalformedList   = "E207" // list operand is not a non-empty list
	ErrCodeMissingExpr     = "E208" // custom-expression operator without text
	ErrCodeInvalidExpr     = "E209" // custom expression does not parse
	ErrCodeDuplicateID     = "E210" // two nodes share an id
	ErrCodeInvalidLogical  = "E211" // group connective is not AND/OR
	ErrCodeMissingID       = "E212" // node without an id
	ErrCodeNilNode         = "E213" // nil entry in a children list
	ErrCodeEmptyFieldPath  = "E214" // condition without a field path
)

// ValidationError describes one problem found in a tree.
type ValidationError struct {
	Code    string `json:"code"`
	NodeID  string `json:"node_id,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("[%s] node %s: %s", e.Code, e.NodeID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	// IsValid is true when Issues is empty. Warnings do not affect validity.
	IsValid bool `json:"is_valid"`

	// Errors holds one descriptive message per issue, in discovery order.
	Errors []string `json:"errors"`

	// Issues holds the structured form of Errors.
	Issues []ValidationError `json:"issues,omitempty"`

	// Warnings lists suspicious but accepted constructs, such as an operator
	// that is not offered for the field's declared type.
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateOption configures Validate.
type ValidateOption func(*validator)

// WithMaxDepth overrides DefaultMaxDepth. Non-positive values are ignored.
func WithMaxDepth(n int) ValidateOption {
	return func(v *validator) {
		if n > 0 {
			v.maxDepth = n
		}
	}
}

// AllowEmptyGroups accepts groups without children.
func AllowEmptyGroups() ValidateOption {
	return func(v *validator) {
		v.allowEmpty = true
	}
}

// Validate checks a tree against the field set. All problems are collected;
// Validate never stops at the first one and never panics.
//
// Rules:
//  1. Group nesting deeper than the maximum depth is rejected
//  2. Groups must have children unless AllowEmptyGroups is given
//  3. Condition fields must exist in fields
//  4. Operators must be known and their value must match the registry arity
//     (null and emptiness checks take no value)
//  5. Custom expressions must parse
//  6. Node ids must be present and unique
func Validate(root *Group, fields *field.Set, opts ...ValidateOption) ValidationResult {
	v := &validator{
		fields:   fields,
		maxDepth: DefaultMaxDepth,
		seen:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(v)
	}

	if root == nil {
		v.addError(ErrCodeNilRoot, "", "", "query has no root group")
	} else {
		if depth := Depth(root); depth > v.maxDepth {
			v.addError(ErrCodeMaxDepth, root.ID, "",
				fmt.Sprintf("query exceeds maximum depth of %d (depth %d)", v.maxDepth, depth))
		}
		v.validateGroup(root, 1)
	}

	return ValidationResult{
		IsValid:  len(v.issues) == 0,
		Errors:   v.messages(),
		Issues:   v.issues,
		Warnings: v.warnings,
	}
}

// validator accumulates issues during traversal.
type validator struct {
	fields     *field.Set
	maxDepth   int
	allowEmpty bool
	seen       map[string]bool
	issues     []ValidationError
	warnings   []string
}

func (v *validator) addError(code, nodeID, fieldPath, message string) {
	v.issues = append(v.issues, ValidationError{
		Code:    code,
		NodeID:  nodeID,
		Field:   fieldPath,
		Message: message,
	})
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) messages() []string {
	out := make([]string, len(v.issues))
	for i, issue := range v.issues {
		out[i] = issue.Message
	}
	return out
}

func (v *validator) checkID(id string) {
	if id == "" {
		v.addError(ErrCodeMissingID, "", "", "node is missing an id")
		return
	}
	if v.seen[id] {
		v.addError(ErrCodeDuplicateID, id, "", fmt.Sprintf("duplicate node id %q", id))
		return
	}
	v.seen[id] = true
}

func (v *validator) validateGroup(g *Group, depth int) {
	v.checkID(g.ID)

	if !g.Logical.Valid() {
		v.addError(ErrCodeInvalidLogical, g.ID, "",
			fmt.Sprintf("group has invalid logical operator %q (want AND or OR)", g.Logical))
	}
	if len(g.Children) == 0 && !v.allowEmpty {
		v.addError(ErrCodeEmptyGroup, g.ID, "", "group must contain at least one condition or group")
	}
	// The depth error was already reported once for the whole tree.
	if depth > v.maxDepth+1 {
		return
	}

	for _, child := range g.Children {
		switch n := child.(type) {
		case *Condition:
			if n == nil {
				v.addError(ErrCodeNilNode, g.ID, "", "group contains a nil condition")
				continue
			}
			v.validateCondition(n)
		case *Group:
			if n == nil {
				v.addError(ErrCodeNilNode, g.ID, "", "group contains a nil group")
				continue
			}
			v.validateGroup(n, depth+1)
		default:
			v.addError(ErrCodeNilNode, g.ID, "", "group contains a nil node")
		}
	}
}

func (v *validator) validateCondition(c *Condition) {
	v.checkID(c.ID)

	if strings.TrimSpace(c.Field) == "" {
		v.addError(ErrCodeEmptyFieldPath, c.ID, "", "condition has no field")
	} else if def, ok := v.fields.Lookup(c.Field); !ok {
		v.addError(ErrCodeUnknownField, c.ID, c.Field, fmt.Sprintf("unknown field %q", c.Field))
	} else if c.Operator.Valid() && !operator.AppliesTo(c.Operator, def.Type) {
		v.addWarning("operator %q is not offered for %s field %q", c.Operator, def.Type, c.Field)
	}

	arity, known := operator.ArityOf(c.Operator)
	if !known {
		v.addError(ErrCodeUnknownOperator, c.ID, c.Field, fmt.Sprintf("unknown operator %q", c.Operator))
		return
	}

	switch arity {
	case operator.ArityNone:
		// null and emptiness checks ignore Value
	case operator.AritySingle:
		if IsBlank(c.Value) {
			v.addError(ErrCodeMissingValue, c.ID, c.Field,
				fmt.Sprintf("field %q: operator %q requires a value", c.Field, c.Operator))
		}
	case operator.ArityDouble:
		lo, hi, ok := RangeBounds(c.Value)
		if !ok || IsBlank(lo) || IsBlank(hi) {
			v.addError(ErrCodeMalformedRange, c.ID, c.Field,
				fmt.Sprintf("field %q: operator %q requires two values [min, max]", c.Field, c.Operator))
		}
	case operator.ArityArray:
		list, ok := ValueList(c.Value)
		if !ok || len(list) == 0 {
			v.addError(ErrCodeMalformedList, c.ID, c.Field,
				fmt.Sprintf("field %q: operator %q requires a non-empty list of values", c.Field, c.Operator))
		}
	case operator.ArityCustomExpression:
		if strings.TrimSpace(c.CustomExpression) == "" {
			v.addError(ErrCodeMissingExpr, c.ID, c.Field,
				fmt.Sprintf("field %q: custom expression is empty", c.Field))
			return
		}
		if _, err := expr.Parse(c.CustomExpression); err != nil {
			v.addError(ErrCodeInvalidExpr, c.ID, c.Field,
				fmt.Sprintf("field %q: invalid custom expression: %v", c.Field, err))
		}
	}
}
