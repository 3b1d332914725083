// Package querysrc generates filter predicate source code from condition
// trees.
//
// Two targets are supported: JavaScript (dotted attribute access with
// optional chaining) and Python (dict lookups). The generated predicate
// mirrors the engine: null values fail every test except the presence
// checks, text tests ignore case, numbers and dates compare by value.
// Number and boolean fields go through small coercion helpers emitted
// ahead of the predicate, so "20" compares as 20 and "1" as true.
// Operators a target cannot express become an always-true literal with a
// comment, so the output is always syntactically valid.
package querysrc

import (
	"fmt"
	"strings"

	"github.com/roach88/filtertree/internal/engine"
	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/operator"
	"github.com/roach88/filtertree/internal/query"
)

// Target names an output language.
type Target string

const (
	TargetJavaScript Target = "javascript"
	TargetPython     Target = "python"
)

// Targets lists the supported targets.
var Targets = []Target{TargetJavaScript, TargetPython}

// ParseTarget accepts "javascript", "js", "python" and "py" in any case.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "javascript", "js":
		return TargetJavaScript, nil
	case "python", "py":
		return TargetPython, nil
	}
	return "", fmt.Errorf("unknown source target %q (want javascript or python)", s)
}

type options struct {
	indent   int
	funcName string
}

// Option configures Compile.
type Option func(*options)

// WithIndent sets the number of spaces per indentation level. The default
// is 2 for JavaScript and 4 for Python.
func WithIndent(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.indent = n
		}
	}
}

// WithFunctionName renames the generated function. Default: "filter".
func WithFunctionName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.funcName = name
		}
	}
}

// Compile generates a predicate function for target. The only error is an
// unsupported target.
func Compile(root *query.Group, fields *field.Set, target Target, opts ...Option) (string, error) {
	var syn syntax
	switch target {
	case TargetJavaScript:
		syn = javascript{}
	case TargetPython:
		syn = python{}
	default:
		return "", fmt.Errorf("unknown source target %q", target)
	}

	o := options{indent: syn.defaultIndent(), funcName: "filter"}
	for _, opt := range opts {
		opt(&o)
	}

	g := generator{syn: syn, fields: fields, unit: strings.Repeat(" ", o.indent), needs: make(map[helper]bool)}
	body := syn.trueLit()
	if root != nil {
		body = g.group(root, 1)
	}

	var b strings.Builder
	for _, h := range []helper{numHelper, boolHelper} {
		if g.needs[h] {
			b.WriteString(syn.helper(h, g.unit))
		}
	}
	b.WriteString(syn.function(o.funcName, g.unit, body))
	return b.String(), nil
}

// helper names a coercion function emitted ahead of the predicate.
type helper int

const (
	numHelper  helper = iota // number normalization, unparseable is 0
	boolHelper               // "true"/"1" and non-zero numbers are true
)

// syntax is one target language.
type syntax interface {
	defaultIndent() int
	function(name, indent, body string) string
	helper(h helper, indent string) string

	and() string
	or() string
	trueLit() string
	falseLit() string
	comment(expr, note string) string

	access(path string) string
	literal(v any) string
	number(acc string) string
	boolean(acc string) string
	date(acc string) string
	dateLiteral(v any) string

	isNull(acc string) string
	notNull(acc string) string
	isEmpty(acc string) string
	notEmpty(acc string) string
	guard(acc, expr string) string
	not(expr string) string

	eq(a, b string) string
	neq(a, b string) string
	compare(a, op, b string) string
	contains(acc, needle string) string
	startsWith(acc, needle string) string
	endsWith(acc, needle string) string
	inList(value string, items []string) string
	between(value, lo, hi string) string
}

type generator struct {
	syn    syntax
	fields *field.Set
	unit   string
	needs  map[helper]bool
}

func (g generator) indent(level int) string {
	return strings.Repeat(g.unit, level)
}

// group renders g at indentation level. Multi-child groups open a
// parenthesized block whose children sit one level deeper, each after the
// first prefixed by the connective.
func (g generator) group(grp *query.Group, level int) string {
	parts := make([]string, 0, len(grp.Children))
	for _, child := range grp.Children {
		switch n := child.(type) {
		case *query.Condition:
			if n != nil {
				parts = append(parts, g.condition(n))
			}
		case *query.Group:
			if n != nil {
				parts = append(parts, g.group(n, level+1))
			}
		}
	}

	switch len(parts) {
	case 0:
		return g.syn.trueLit()
	case 1:
		return parts[0]
	}

	connective := g.syn.and()
	if grp.Logical == query.Or {
		connective = g.syn.or()
	}

	var b strings.Builder
	b.WriteString("(\n")
	for i, part := range parts {
		b.WriteString(g.indent(level + 1))
		if i > 0 {
			b.WriteString(connective + " ")
		}
		b.WriteString(part)
		b.WriteString("\n")
	}
	b.WriteString(g.indent(level) + ")")
	return b.String()
}

func (g generator) condition(c *query.Condition) string {
	syn := g.syn
	t := g.fields.TypeOf(c.Field)
	acc := syn.access(c.Field)
	// Projection is deferred so a helper is only emitted when it is used.
	val := func() string { return g.project(t, acc) }

	switch c.Operator {
	case operator.Equal:
		if c.Value == nil {
			return syn.falseLit()
		}
		projected := val()
		eq := syn.eq(projected, g.operand(t, c.Value))
		if projected != acc {
			// A projected null would compare as its coerced value.
			return syn.guard(acc, eq)
		}
		return eq
	case operator.NotEqual:
		if c.Value == nil {
			return syn.notNull(acc)
		}
		return syn.guard(acc, syn.neq(val(), g.operand(t, c.Value)))

	case operator.GreaterThan:
		return syn.guard(acc, syn.compare(val(), ">", g.operand(t, c.Value)))
	case operator.LessThan:
		return syn.guard(acc, syn.compare(val(), "<", g.operand(t, c.Value)))
	case operator.GreaterOrEqual:
		return syn.guard(acc, syn.compare(val(), ">=", g.operand(t, c.Value)))
	case operator.LessOrEqual:
		return syn.guard(acc, syn.compare(val(), "<=", g.operand(t, c.Value)))

	case operator.Contains:
		return syn.guard(acc, syn.contains(acc, g.needle(c.Value)))
	case operator.NotContains:
		return syn.guard(acc, syn.not(syn.contains(acc, g.needle(c.Value))))
	case operator.StartsWith:
		return syn.guard(acc, syn.startsWith(acc, g.needle(c.Value)))
	case operator.NotStartsWith:
		return syn.guard(acc, syn.not(syn.startsWith(acc, g.needle(c.Value))))
	case operator.EndsWith:
		return syn.guard(acc, syn.endsWith(acc, g.needle(c.Value)))
	case operator.NotEndsWith:
		return syn.guard(acc, syn.not(syn.endsWith(acc, g.needle(c.Value))))

	case operator.IsNull:
		return syn.isNull(acc)
	case operator.NotNull:
		return syn.notNull(acc)
	case operator.IsEmpty:
		return syn.isEmpty(acc)
	case operator.NotEmpty:
		return syn.notEmpty(acc)

	case operator.Between, operator.NotBetween:
		lo, hi, ok := query.RangeBounds(c.Value)
		if !ok {
			return syn.comment(syn.falseLit(), "malformed range operand")
		}
		in := syn.between(val(), g.operand(t, lo), g.operand(t, hi))
		if c.Operator == operator.NotBetween {
			in = syn.not(in)
		}
		return syn.guard(acc, in)

	case operator.InList, operator.NotInList:
		list, ok := query.ValueList(c.Value)
		if !ok {
			return syn.comment(syn.falseLit(), "malformed list operand")
		}
		items := make([]string, len(list))
		for i, item := range list {
			items[i] = g.operand(t, item)
		}
		in := syn.inList(val(), items)
		if c.Operator == operator.NotInList {
			in = syn.not(in)
		}
		return syn.guard(acc, in)

	case operator.CustomExpression:
		return syn.comment(syn.trueLit(), "unsupported operator: custom-expression")
	}

	return syn.comment(syn.trueLit(), "unsupported operator: "+sanitize(string(c.Operator)))
}

// project converts an accessor into the comparable form for t.
func (g generator) project(t field.Type, acc string) string {
	switch t {
	case field.TypeNumber:
		g.needs[numHelper] = true
		return g.syn.number(acc)
	case field.TypeBoolean:
		g.needs[boolHelper] = true
		return g.syn.boolean(acc)
	case field.TypeDate:
		return g.syn.date(acc)
	}
	return acc
}

// operand normalizes a literal the way the engine normalizes it, then
// renders it.
func (g generator) operand(t field.Type, v any) string {
	if v == nil {
		return g.syn.literal(nil)
	}
	switch t {
	case field.TypeNumber:
		return g.syn.literal(engine.ToNumber(v))
	case field.TypeDate:
		return g.syn.dateLiteral(engine.ToDate(v, engine.DefaultDateLayouts))
	case field.TypeBoolean:
		return g.syn.literal(engine.ToBool(v))
	}
	return g.syn.literal(v)
}

// needle renders a lower-cased text operand.
func (g generator) needle(v any) string {
	s := ""
	if v != nil {
		s = fmt.Sprint(v)
	}
	return g.syn.literal(strings.ToLower(s))
}

// sanitize keeps an operator token safe inside a comment.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '?'
	}, s)
}
