package expr

import (
	"cmp"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue/token"
)

// Resolver returns the value of a record field by dot-path. Missing fields
// resolve to nil.
type Resolver func(path string) any

// Comparator orders two operand values. It returns a negative number when
// a < b, zero when they are equal and a positive number when a > b.
type Comparator interface {
	Compare(a, b any) int
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc func(a, b any) int

// Compare calls f(a, b).
func (f ComparatorFunc) Compare(a, b any) int { return f(a, b) }

// Eval evaluates the expression against resolve. A nil cmp selects
// DefaultComparator. The result is the truthiness of the final value.
func (e *Expression) Eval(resolve Resolver, cmp Comparator) (bool, error) {
	if cmp == nil {
		cmp = DefaultComparator
	}
	if resolve == nil {
		resolve = func(string) any { return nil }
	}
	ev := evaluator{resolve: resolve, cmp: cmp}
	v, err := ev.eval(e.root)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", e.source, err)
	}
	return Truthy(v), nil
}

type (
	unaryOp  int
	binaryOp int
)

const (
	opNot unaryOp = iota
	opNeg
)

const (
	opAnd binaryOp = iota
	opOr
	opEq
	opNeq
	opLt
	opGt
	opLte
	opGte
)

var binaryOps = map[token.Token]binaryOp{
	token.LAND: opAnd,
	token.LOR:  opOr,
	token.EQL:  opEq,
	token.NEQ:  opNeq,
	token.LSS:  opLt,
	token.GTR:  opGt,
	token.LEQ:  opLte,
	token.GEQ:  opGte,
}

// node is the closed expression AST.
type node interface {
	exprNode()
}

type literalNode struct{ value any }

type fieldRef struct{ path string }

type unaryNode struct {
	op unaryOp
	x  node
}

type binaryNode struct {
	op   binaryOp
	x, y node
}

func (literalNode) exprNode() {}
func (fieldRef) exprNode()    {}
func (unaryNode) exprNode()   {}
func (binaryNode) exprNode()  {}

type evaluator struct {
	resolve Resolver
	cmp     Comparator
}

func (ev evaluator) eval(n node) (any, error) {
	switch n := n.(type) {
	case literalNode:
		return n.value, nil
	case fieldRef:
		return ev.resolve(n.path), nil
	case unaryNode:
		x, err := ev.eval(n.x)
		if err != nil {
			return nil, err
		}
		if n.op == opNot {
			return !Truthy(x), nil
		}
		f, ok := toFloat(x)
		if !ok {
			return nil, fmt.Errorf("cannot negate %T", x)
		}
		return -f, nil
	case binaryNode:
		return ev.evalBinary(n)
	}
	return nil, fmt.Errorf("unexpected node %T", n)
}

func (ev evaluator) evalBinary(n binaryNode) (any, error) {
	x, err := ev.eval(n.x)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case opAnd:
		if !Truthy(x) {
			return false, nil
		}
		y, err := ev.eval(n.y)
		if err != nil {
			return nil, err
		}
		return Truthy(y), nil
	case opOr:
		if Truthy(x) {
			return true, nil
		}
		y, err := ev.eval(n.y)
		if err != nil {
			return nil, err
		}
		return Truthy(y), nil
	}

	y, err := ev.eval(n.y)
	if err != nil {
		return nil, err
	}

	if x == nil || y == nil {
		switch n.op {
		case opEq:
			return x == nil && y == nil, nil
		case opNeq:
			return !(x == nil && y == nil), nil
		}
	}

	c := ev.cmp.Compare(x, y)
	switch n.op {
	case opEq:
		return c == 0, nil
	case opNeq:
		return c != 0, nil
	case opLt:
		return c < 0, nil
	case opGt:
		return c > 0, nil
	case opLte:
		return c <= 0, nil
	case opGte:
		return c >= 0, nil
	}
	return nil, fmt.Errorf("unexpected operator %d", n.op)
}

// Truthy reports the boolean reading of v: nil, false, zero numbers and
// empty strings are false; everything else is true.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case time.Time:
		return !val.IsZero()
	}
	if f, ok := numeric(v); ok {
		return f != 0
	}
	return true
}

// DefaultComparator orders values without field type information.
// nil sorts first. Numbers compare numerically, times by instant, booleans
// false before true and strings lexicographically. A number compared with a
// numeric string compares numerically; other mixed pairs compare by their
// formatted text.
var DefaultComparator Comparator = ComparatorFunc(defaultCompare)

func defaultCompare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			_, aStr := a.(string)
			_, bStr := b.(string)
			if !aStr || !bStr {
				return cmp.Compare(fa, fb)
			}
		}
	}

	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return boolRank(x) - boolRank(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toFloat reads numbers and numeric strings.
func toFloat(v any) (float64, bool) {
	if f, ok := numeric(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return 0, false
}

func numeric(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
