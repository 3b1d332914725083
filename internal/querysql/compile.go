// Package querysql compiles condition trees into SQL WHERE fragments.
//
// The compiler is a string generator, not a query planner. Its output
// agrees with the engine on every operator it supports; operators it cannot
// express degrade to a constant predicate instead of failing:
//
//	1=1  custom expressions and unknown operators (default-pass)
//	1=0  malformed range or list operands (default-reject)
package querysql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/filtertree/internal/operator"
	"github.com/roach88/filtertree/internal/query"
)

const (
	alwaysTrue  = "1=1"
	alwaysFalse = "1=0"
)

// SQLCompiler compiles trees to SQL.
//
// By default every operand is rendered as an escaped literal. With
// WithPlaceholders the compiler emits ? placeholders and returns the
// operands separately, ready for database/sql.
type SQLCompiler struct {
	columns      map[string]string
	placeholders bool
}

// Option configures an SQLCompiler.
type Option func(*SQLCompiler)

// WithColumns maps field paths to column expressions. Mapped expressions
// are emitted verbatim; unmapped fields become quoted identifiers.
func WithColumns(columns map[string]string) Option {
	return func(c *SQLCompiler) {
		for k, v := range columns {
			c.columns[k] = v
		}
	}
}

// WithPlaceholders makes the compiler emit ? placeholders.
func WithPlaceholders() Option {
	return func(c *SQLCompiler) {
		c.placeholders = true
	}
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler(opts ...Option) *SQLCompiler {
	c := &SQLCompiler{columns: make(map[string]string)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile returns the WHERE fragment for root using literal operands.
// Columns are qualified with table when it is not empty.
func Compile(root *query.Group, table string) string {
	sql, _ := NewSQLCompiler().Where(root, table)
	return sql
}

// CompileStatement returns SELECT * FROM "<table>" WHERE <fragment>.
func CompileStatement(root *query.Group, table string) string {
	sql, _ := NewSQLCompiler().Statement(root, table)
	return sql
}

// Where compiles root into a WHERE fragment (without the keyword). params
// is nil unless the compiler uses placeholders.
func (c *SQLCompiler) Where(root *query.Group, table string) (string, []any) {
	w := &writer{compiler: c, table: table}
	if root == nil {
		return alwaysTrue, nil
	}
	return w.group(root), w.params
}

// Statement compiles a full SELECT over table.
func (c *SQLCompiler) Statement(root *query.Group, table string) (string, []any) {
	where, params := c.Where(root, table)
	return fmt.Sprintf("SELECT * FROM %s WHERE %s", QuoteIdent(table), where), params
}

// writer carries per-compilation state.
type writer struct {
	compiler *SQLCompiler
	table    string
	params   []any
}

func (w *writer) group(g *query.Group) string {
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		switch n := child.(type) {
		case *query.Condition:
			if n != nil {
				parts = append(parts, w.condition(n))
			}
		case *query.Group:
			if n != nil {
				parts = append(parts, w.group(n))
			}
		}
	}

	switch len(parts) {
	case 0:
		return alwaysTrue
	case 1:
		return parts[0]
	}
	joiner := " AND "
	if g.Logical == query.Or {
		joiner = " OR "
	}
	return "(" + strings.Join(parts, joiner) + ")"
}

func (w *writer) condition(c *query.Condition) string {
	col := w.column(c.Field)

	switch c.Operator {
	case operator.Equal:
		return col + " = " + w.value(c.Value)
	case operator.NotEqual:
		if c.Value == nil {
			return col + " IS NOT NULL"
		}
		return col + " != " + w.value(c.Value)
	case operator.GreaterThan:
		return col + " > " + w.value(c.Value)
	case operator.LessThan:
		return col + " < " + w.value(c.Value)
	case operator.GreaterOrEqual:
		return col + " >= " + w.value(c.Value)
	case operator.LessOrEqual:
		return col + " <= " + w.value(c.Value)

	case operator.Contains:
		return w.like(col, "LIKE", "%", c.Value, "%")
	case operator.NotContains:
		return w.like(col, "NOT LIKE", "%", c.Value, "%")
	case operator.StartsWith:
		return w.like(col, "LIKE", "", c.Value, "%")
	case operator.NotStartsWith:
		return w.like(col, "NOT LIKE", "", c.Value, "%")
	case operator.EndsWith:
		return w.like(col, "LIKE", "%", c.Value, "")
	case operator.NotEndsWith:
		return w.like(col, "NOT LIKE", "%", c.Value, "")

	case operator.IsNull:
		return col + " IS NULL"
	case operator.NotNull:
		return col + " IS NOT NULL"
	case operator.IsEmpty:
		return "(" + col + " IS NULL OR " + col + " = '')"
	case operator.NotEmpty:
		return "(" + col + " IS NOT NULL AND " + col + " != '')"

	case operator.Between, operator.NotBetween:
		lo, hi, ok := query.RangeBounds(c.Value)
		if !ok {
			return alwaysFalse
		}
		kw := " BETWEEN "
		if c.Operator == operator.NotBetween {
			kw = " NOT BETWEEN "
		}
		return col + kw + w.value(lo) + " AND " + w.value(hi)

	case operator.InList, operator.NotInList:
		list, ok := query.ValueList(c.Value)
		if !ok || len(list) == 0 {
			return alwaysFalse
		}
		items := make([]string, len(list))
		for i, item := range list {
			items[i] = w.value(item)
		}
		kw := " IN ("
		if c.Operator == operator.NotInList {
			kw = " NOT IN ("
		}
		return col + kw + strings.Join(items, ", ") + ")"

	case operator.CustomExpression:
		return alwaysTrue
	}

	return alwaysTrue
}

// column renders a field path as a column reference. A dotted path is a
// single identifier ("address.city"), not a table-qualified name.
func (w *writer) column(path string) string {
	if expr, ok := w.compiler.columns[path]; ok {
		return expr
	}
	if w.table != "" {
		return QuoteIdent(w.table) + "." + QuoteIdent(path)
	}
	return QuoteIdent(path)
}

// value renders an operand as a literal or registers it as a parameter.
func (w *writer) value(v any) string {
	if w.compiler.placeholders && v != nil {
		w.params = append(w.params, paramValue(v))
		return "?"
	}
	return Literal(v)
}

func (w *writer) like(col, kw, prefix string, v any, suffix string) string {
	pattern := prefix + EscapeLike(text(v)) + suffix
	return col + " " + kw + " " + w.value(pattern) + ` ESCAPE '\'`
}

// QuoteIdent quotes an identifier with double quotes, doubling any embedded
// double quote.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString quotes a string literal with single quotes, doubling any
// embedded single quote.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// EscapeLike escapes LIKE wildcards for use with ESCAPE '\'.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Literal renders v as an SQL literal. Numbers and booleans are printed
// bare, nil is NULL, dates and everything else are quoted strings.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return QuoteString(val)
	case time.Time:
		return QuoteString(formatTime(val))
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return QuoteString(val.String())
	}
	return QuoteString(fmt.Sprint(v))
}

// paramValue converts an operand into a database/sql argument.
func paramValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return formatTime(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case fmt.Stringer:
		return val.String()
	}
	return v
}

// formatTime prints midnight UTC as a bare date, anything else as RFC 3339.
func formatTime(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return u.Format(time.RFC3339Nano)
}

func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return formatTime(val)
	}
	return fmt.Sprint(v)
}
