package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/filtertree/internal/operator"
	"github.com/roach88/filtertree/internal/testutil"
)

func codes(r ValidationResult) []string {
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.Code
	}
	return out
}

// nested returns a root whose groups nest depth levels deep, with one
// condition in the innermost group.
func nested(depth int) *Group {
	f := NewFactory(testutil.NewFixedIDGenerator("d"))
	root := f.Root()
	g := root
	for i := 1; i < depth; i++ {
		child := f.Group(And)
		g.Children = append(g.Children, child)
		g = child
	}
	g.Children = append(g.Children, f.Condition("age", operator.GreaterThan, 1))
	return root
}

func TestValidate_Valid(t *testing.T) {
	r := Validate(sample(), testutil.PeopleFields())

	assert.True(t, r.IsValid, r.Errors)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestValidate_NilRoot(t *testing.T) {
	r := Validate(nil, testutil.PeopleFields())

	assert.False(t, r.IsValid)
	assert.Equal(t, []string{ErrCodeNilRoot}, codes(r))
}

func TestValidate_Depth(t *testing.T) {
	fields := testutil.PeopleFields()

	atLimit := Validate(nested(DefaultMaxDepth), fields)
	assert.True(t, atLimit.IsValid, atLimit.Errors)

	tooDeep := Validate(nested(DefaultMaxDepth+1), fields)
	require.False(t, tooDeep.IsValid)
	assert.Equal(t, []string{ErrCodeMaxDepth}, codes(tooDeep))
	assert.Contains(t, tooDeep.Errors[0], "maximum depth of 10")

	custom := Validate(nested(3), fields, WithMaxDepth(2))
	assert.False(t, custom.IsValid)

	ignored := Validate(nested(3), fields, WithMaxDepth(0))
	assert.True(t, ignored.IsValid)
}

func TestValidate_DepthReportedOnce(t *testing.T) {
	r := Validate(nested(30), testutil.PeopleFields())

	assert.Equal(t, []string{ErrCodeMaxDepth}, codes(r))
}

func TestValidate_EmptyGroups(t *testing.T) {
	root := &Group{ID: "r", Logical: And, Children: []Node{&Group{ID: "g", Logical: Or}}}

	r := Validate(root, testutil.PeopleFields())
	assert.Equal(t, []string{ErrCodeEmptyGroup}, codes(r))
	assert.Equal(t, "g", r.Issues[0].NodeID)

	assert.True(t, Validate(root, testutil.PeopleFields(), AllowEmptyGroups()).IsValid)
}

func TestValidate_Conditions(t *testing.T) {
	tests := []struct {
		name string
		cond *Condition
		code string
	}{
		{"unknown field", &Condition{Field: "salary", Operator: operator.Equal, Value: 1}, ErrCodeUnknownField},
		{"empty field", &Condition{Field: " ", Operator: operator.Equal, Value: 1}, ErrCodeEmptyFieldPath},
		{"unknown operator", &Condition{Field: "age", Operator: "~", Value: 1}, ErrCodeUnknownOperator},
		{"missing value", &Condition{Field: "age", Operator: operator.Equal}, ErrCodeMissingValue},
		{"blank string", &Condition{Field: "name", Operator: operator.Contains, Value: "  "}, ErrCodeMissingValue},
		{"range scalar", &Condition{Field: "age", Operator: operator.Between, Value: 3}, ErrCodeMalformedRange},
		{"range triple", &Condition{Field: "age", Operator: operator.Between, Value: []any{1, 2, 3}}, ErrCodeMalformedRange},
		{"range blank bound", &Condition{Field: "age", Operator: operator.NotBetween, Value: []any{1, nil}}, ErrCodeMalformedRange},
		{"list scalar", &Condition{Field: "status", Operator: operator.InList, Value: "a"}, ErrCodeMalformedList},
		{"list empty", &Condition{Field: "status", Operator: operator.NotInList, Value: []any{}}, ErrCodeMalformedList},
		{"missing expression", &Condition{Field: "age", Operator: operator.CustomExpression}, ErrCodeMissingExpr},
		{"invalid expression", &Condition{Field: "age", Operator: operator.CustomExpression, CustomExpression: "${age} >"}, ErrCodeInvalidExpr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cond.ID = "c"
			r := Validate(&Group{ID: "r", Logical: And, Children: []Node{tt.cond}}, testutil.PeopleFields())

			assert.False(t, r.IsValid)
			assert.Contains(t, codes(r), tt.code)
			assert.Len(t, r.Errors, len(r.Issues))
		})
	}
}

func TestValidate_NullChecksIgnoreValue(t *testing.T) {
	for _, op := range []operator.Operator{operator.IsNull, operator.NotNull, operator.IsEmpty, operator.NotEmpty} {
		root := &Group{ID: "r", Logical: And, Children: []Node{
			&Condition{ID: "a", Field: "email", Operator: op},
			&Condition{ID: "b", Field: "email", Operator: op, Value: "ignored"},
		}}
		r := Validate(root, testutil.PeopleFields())
		assert.True(t, r.IsValid, "%s: %v", op, r.Errors)
	}
}

func TestValidate_IDs(t *testing.T) {
	root := &Group{ID: "r", Logical: And, Children: []Node{
		&Condition{ID: "dup", Field: "age", Operator: operator.Equal, Value: 1},
		&Condition{ID: "dup", Field: "age", Operator: operator.Equal, Value: 2},
		&Condition{Field: "age", Operator: operator.Equal, Value: 3},
	}}

	r := Validate(root, testutil.PeopleFields())
	assert.Equal(t, []string{ErrCodeDuplicateID, ErrCodeMissingID}, codes(r))
}

func TestValidate_Structure(t *testing.T) {
	root := &Group{ID: "r", Logical: "XOR", Children: []Node{(*Condition)(nil), (*Group)(nil), nil}}

	r := Validate(root, testutil.PeopleFields())
	assert.Equal(t, []string{ErrCodeInvalidLogical, ErrCodeNilNode, ErrCodeNilNode, ErrCodeNilNode}, codes(r))
}

func TestValidate_CollectsEverything(t *testing.T) {
	root := &Group{ID: "r", Logical: And, Children: []Node{
		&Condition{ID: "a", Field: "salary", Operator: operator.Equal, Value: 1},
		&Group{ID: "g", Logical: Or, Children: []Node{
			&Condition{ID: "b", Field: "age", Operator: operator.Between, Value: 1},
		}},
	}}

	r := Validate(root, testutil.PeopleFields())
	assert.Equal(t, []string{ErrCodeUnknownField, ErrCodeMalformedRange}, codes(r))
	assert.Equal(t, "b", r.Issues[1].NodeID)
	assert.True(t, strings.HasPrefix(r.Issues[1].Error(), "[E206] node b:"))
}

func TestValidate_TypeMismatchWarns(t *testing.T) {
	root := &Group{ID: "r", Logical: And, Children: []Node{
		&Condition{ID: "a", Field: "name", Operator: operator.GreaterThan, Value: "m"},
	}}

	r := Validate(root, testutil.PeopleFields())
	assert.True(t, r.IsValid)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], `operator ">" is not offered for text field "name"`)
}
