// Package querytext renders condition trees as human-readable sentences.
//
// Each condition reads "<field title> <operator label> <value>", using the
// field set for titles and option labels and the operator registry for
// operator wording. Nested groups with more than one rendered child are
// parenthesized; the top level is not.
package querytext

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/operator"
	"github.com/roach88/filtertree/internal/query"
)

// Compile renders root. An empty tree renders as "".
func Compile(root *query.Group, fields *field.Set) string {
	if root == nil {
		return ""
	}
	r := renderer{fields: fields}
	return r.group(root, true)
}

// CompileCondition renders a single condition.
func CompileCondition(c *query.Condition, fields *field.Set) string {
	if c == nil {
		return ""
	}
	r := renderer{fields: fields}
	return r.condition(c)
}

type renderer struct {
	fields *field.Set
}

func (r renderer) group(g *query.Group, top bool) string {
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		var s string
		switch n := child.(type) {
		case *query.Condition:
			if n != nil {
				s = r.condition(n)
			}
		case *query.Group:
			if n != nil {
				s = r.group(n, false)
			}
		}
		if s != "" {
			parts = append(parts, s)
		}
	}

	if len(parts) == 0 {
		return ""
	}
	joined := strings.Join(parts, " "+string(logical(g))+" ")
	if len(parts) == 1 || top {
		return joined
	}
	return "(" + joined + ")"
}

func logical(g *query.Group) query.Logical {
	if g.Logical == query.Or {
		return query.Or
	}
	return query.And
}

func (r renderer) condition(c *query.Condition) string {
	title := r.fields.Title(c.Field)
	label := operator.Label(c.Operator)
	def, _ := r.fields.Lookup(c.Field)

	arity, known := operator.ArityOf(c.Operator)
	if !known {
		return fmt.Sprintf("%s %s %s", title, label, r.value(def, c.Value))
	}

	switch arity {
	case operator.ArityNone:
		return title + " " + label
	case operator.ArityDouble:
		lo, hi, ok := query.RangeBounds(c.Value)
		if !ok {
			return fmt.Sprintf("%s %s %s", title, label, r.value(def, c.Value))
		}
		return fmt.Sprintf("%s %s %s and %s", title, label, r.value(def, lo), r.value(def, hi))
	case operator.ArityCustomExpression:
		return fmt.Sprintf("%s %s %s", title, label, strconv.Quote(c.CustomExpression))
	}
	return fmt.Sprintf("%s %s %s", title, label, r.value(def, c.Value))
}

// value formats an operand. Strings are double-quoted; select options
// print their label; lists print as [a, b].
func (r renderer) value(def field.Definition, v any) string {
	if list, ok := query.ValueList(v); ok {
		items := make([]string, len(list))
		for i, item := range list {
			items[i] = r.value(def, item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}

	if label, ok := optionLabel(def, v); ok {
		return strconv.Quote(label)
	}

	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		u := val.UTC()
		if u.Equal(u.Truncate(24 * time.Hour)) {
			return u.Format("2006-01-02")
		}
		return u.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func optionLabel(def field.Definition, v any) (string, bool) {
	if def.Type != field.TypeSelect && def.Type != field.TypeMultiSelect {
		return "", false
	}
	for _, opt := range def.Options {
		if opt.Label != "" && fmt.Sprint(opt.Value) == fmt.Sprint(v) {
			return opt.Label, true
		}
	}
	return "", false
}
