package engine

import (
	"strings"

	"github.com/roach88/filtertree/internal/expr"
	"github.com/roach88/filtertree/internal/operator"
	"github.com/roach88/filtertree/internal/query"
)

// condition evaluates one leaf. It never fails: soft failures are logged
// and reported as false.
func (ev *evaluation) condition(record any, c *query.Condition) bool {
	if c.Operator == operator.CustomExpression {
		return ev.customExpression(record, c)
	}

	raw := Resolve(record, c.Field)

	// Presence checks read the raw value; the registry decides which
	// operators those are.
	if operator.IsNullCheck(c.Operator) {
		return ev.presence(raw, c)
	}
	if raw == nil {
		return false
	}

	t := ev.fields.TypeOf(c.Field)
	value := ev.normalize(t, raw)

	switch c.Operator {
	case operator.Equal:
		return ev.matchEqual(value, ev.normalize(t, c.Value))
	case operator.NotEqual:
		return !ev.matchEqual(value, ev.normalize(t, c.Value))

	case operator.GreaterThan:
		return ev.compare(value, ev.normalize(t, c.Value)) > 0
	case operator.LessThan:
		return ev.compare(value, ev.normalize(t, c.Value)) < 0
	case operator.GreaterOrEqual:
		return ev.compare(value, ev.normalize(t, c.Value)) >= 0
	case operator.LessOrEqual:
		return ev.compare(value, ev.normalize(t, c.Value)) <= 0

	case operator.Contains:
		return strings.Contains(ev.fold(value), ev.fold(c.Value))
	case operator.NotContains:
		return !strings.Contains(ev.fold(value), ev.fold(c.Value))
	case operator.StartsWith:
		return strings.HasPrefix(ev.fold(value), ev.fold(c.Value))
	case operator.NotStartsWith:
		return !strings.HasPrefix(ev.fold(value), ev.fold(c.Value))
	case operator.EndsWith:
		return strings.HasSuffix(ev.fold(value), ev.fold(c.Value))
	case operator.NotEndsWith:
		return !strings.HasSuffix(ev.fold(value), ev.fold(c.Value))

	case operator.Between, operator.NotBetween:
		lo, hi, ok := query.RangeBounds(c.Value)
		if !ok {
			ev.warn(c, "range operand is not a [min, max] pair")
			return false
		}
		in := ev.compare(value, ev.normalize(t, lo)) >= 0 &&
			ev.compare(value, ev.normalize(t, hi)) <= 0
		return in == (c.Operator == operator.Between)

	case operator.InList, operator.NotInList:
		list, ok := query.ValueList(c.Value)
		if !ok {
			ev.warn(c, "list operand is not a list")
			return false
		}
		found := false
		for _, item := range list {
			if ev.matchEqual(value, ev.normalize(t, item)) {
				found = true
				break
			}
		}
		return found == (c.Operator == operator.InList)

	case operator.IsNull, operator.NotNull, operator.IsEmpty, operator.NotEmpty,
		operator.CustomExpression:
		// handled above
		return false
	}

	ev.warn(c, "unknown operator")
	return false
}

// presence evaluates the null and emptiness checks on a raw value.
func (ev *evaluation) presence(raw any, c *query.Condition) bool {
	switch c.Operator {
	case operator.IsNull:
		return raw == nil
	case operator.NotNull:
		return raw != nil
	case operator.IsEmpty:
		return raw == nil || raw == ""
	case operator.NotEmpty:
		return raw != nil && raw != ""
	}
	ev.warn(c, "operator takes no value but is not a presence check")
	return false
}

// matchEqual is equality for one field value. A list value (multiselect)
// matches when any element equals the operand.
func (ev *evaluation) matchEqual(value, operand any) bool {
	if ev.equal(value, operand) {
		return true
	}
	if _, isList := query.ValueList(operand); isList {
		return false
	}
	if list, ok := query.ValueList(value); ok {
		for _, item := range list {
			if ev.equal(item, operand) {
				return true
			}
		}
	}
	return false
}

// fold renders v as text and applies Unicode case folding.
func (ev *evaluation) fold(v any) string {
	return ev.folder.String(toText(v))
}

func (ev *evaluation) customExpression(record any, c *query.Condition) bool {
	e, ok := ev.exprs[c.CustomExpression]
	if !ok {
		var err error
		e, err = expr.Parse(c.CustomExpression)
		if err != nil {
			ev.warn(c, "custom expression does not parse", "error", err)
			return false
		}
		ev.exprs[c.CustomExpression] = e
	}

	resolve := func(path string) any {
		return ev.normalize(ev.fields.TypeOf(path), Resolve(record, path))
	}
	matched, err := e.Eval(resolve, expr.ComparatorFunc(ev.compare))
	if err != nil {
		ev.warn(c, "custom expression failed", "error", err)
		return false
	}
	return matched
}

func (ev *evaluation) warn(c *query.Condition, msg string, args ...any) {
	attrs := append([]any{
		"condition_id", c.ID,
		"field", c.Field,
		"operator", string(c.Operator),
	}, args...)
	ev.logger.Warn(msg, attrs...)
}
