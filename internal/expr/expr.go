// Package expr implements the custom-expression language of filter
// conditions.
//
// An expression references record fields with ${path} placeholders and
// combines them with literals, comparisons and boolean connectives:
//
//	${age} >= 18 && (${status} == "active" || ${vip} == true)
//
// Expressions are parsed with the CUE expression grammar and lowered into a
// small closed AST. Anything outside that AST (calls, selectors, indexing,
// arithmetic other than unary minus, unknown identifiers, interpolation) is
// rejected at parse time. Evaluation only walks the AST; user text is never
// executed.
package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/parser"
	"cuelang.org/go/cue/token"
)

// placeholder matches ${path} references.
var placeholder = regexp.MustCompile(`\$\{\s*([^{}]*?)\s*\}`)

// refPrefix names the identifiers placeholders are rewritten to.
const refPrefix = "ref_"

// Expression is a parsed, validated custom expression. It is immutable and
// safe for concurrent evaluation.
type Expression struct {
	source string
	root   node
	fields []string
}

// Parse parses text into an Expression.
func Parse(text string) (*Expression, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty expression")
	}

	var fields []string
	refs := make(map[string]string)
	var badRef error
	rewritten := replaceOutsideStrings(text, func(m string) string {
		path := strings.TrimSpace(placeholder.FindStringSubmatch(m)[1])
		if path == "" && badRef == nil {
			badRef = fmt.Errorf("empty field reference %q", m)
		}
		ident := refPrefix + strconv.Itoa(len(fields))
		fields = append(fields, path)
		refs[ident] = path
		return ident
	})
	if badRef != nil {
		return nil, badRef
	}

	parsed, err := parser.ParseExpr("expression", rewritten)
	if err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}

	l := &lowerer{refs: refs}
	root, err := l.lower(parsed)
	if err != nil {
		return nil, err
	}

	return &Expression{source: text, root: root, fields: fields}, nil
}

// replaceOutsideStrings applies fn to every placeholder that is not inside
// a string literal. Text within quotes is copied unchanged.
func replaceOutsideStrings(text string, fn func(string) string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(text); {
		switch text[i] {
		case '$':
			if i+1 < len(text) && text[i+1] == '{' {
				if j := strings.IndexByte(text[i:], '}'); j >= 0 {
					i += j + 1
					continue
				}
			}
		case '"', '\'', '#':
			if end := stringEnd(text, i); end > i {
				b.WriteString(placeholder.ReplaceAllStringFunc(text[start:i], fn))
				b.WriteString(text[i:end])
				i, start = end, end
				continue
			}
		}
		i++
	}
	b.WriteString(placeholder.ReplaceAllStringFunc(text[start:], fn))
	return b.String()
}

// stringEnd returns the offset just past the CUE string literal starting at
// i, or i when no literal starts there. Raw strings (#"..."#) and
// multi-line strings ("""...""") are recognized. An unterminated literal
// runs to the end of text.
func stringEnd(text string, i int) int {
	j := i
	for j < len(text) && text[j] == '#' {
		j++
	}
	hashes := j - i
	if j >= len(text) || (text[j] != '"' && text[j] != '\'') {
		return i
	}
	quote := text[j : j+1]
	if strings.HasPrefix(text[j:], strings.Repeat(quote, 3)) {
		quote = strings.Repeat(quote, 3)
	}
	closing := quote + strings.Repeat("#", hashes)
	escape := "\\" + strings.Repeat("#", hashes)

	for k := j + len(quote); k < len(text); {
		if strings.HasPrefix(text[k:], escape) {
			k += len(escape) + 1
			continue
		}
		if strings.HasPrefix(text[k:], closing) {
			return k + len(closing)
		}
		k++
	}
	return len(text)
}

// MustParse is like Parse but panics on error.
// Use only in tests or with constant expressions.
func MustParse(text string) *Expression {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the original expression text.
func (e *Expression) String() string {
	return e.source
}

// Fields returns the field paths referenced by the expression, in order of
// appearance. A path referenced twice is listed twice.
func (e *Expression) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// lowerer converts a CUE AST into the closed expression AST.
type lowerer struct {
	refs map[string]string
}

func (l *lowerer) lower(x ast.Expr) (node, error) {
	switch n := x.(type) {
	case *ast.ParenExpr:
		return l.lower(n.X)

	case *ast.BasicLit:
		return lowerLiteral(n)

	case *ast.Ident:
		if path, ok := l.refs[n.Name]; ok {
			return fieldRef{path: path}, nil
		}
		switch n.Name {
		case "true":
			return literalNode{value: true}, nil
		case "false":
			return literalNode{value: false}, nil
		case "null":
			return literalNode{value: nil}, nil
		}
		return nil, fmt.Errorf("%s: unknown identifier %q (reference fields as ${name})", n.Pos(), n.Name)

	case *ast.UnaryExpr:
		operand, err := l.lower(n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.NOT:
			return unaryNode{op: opNot, x: operand}, nil
		case token.SUB:
			return unaryNode{op: opNeg, x: operand}, nil
		case token.ADD:
			return operand, nil
		}
		return nil, fmt.Errorf("%s: unsupported unary operator %q", n.Pos(), n.Op)

	case *ast.BinaryExpr:
		op, ok := binaryOps[n.Op]
		if !ok {
			return nil, fmt.Errorf("%s: unsupported operator %q", n.OpPos, n.Op)
		}
		left, err := l.lower(n.X)
		if err != nil {
			return nil, err
		}
		right, err := l.lower(n.Y)
		if err != nil {
			return nil, err
		}
		return binaryNode{op: op, x: left, y: right}, nil
	}

	return nil, fmt.Errorf("%s: unsupported expression %T", x.Pos(), x)
}

func lowerLiteral(lit *ast.BasicLit) (node, error) {
	switch lit.Kind {
	case token.STRING:
		s, err := literal.Unquote(lit.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", lit.Pos(), err)
		}
		return literalNode{value: s}, nil
	case token.INT, token.FLOAT:
		f, err := parseNumber(lit.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", lit.Pos(), lit.Value)
		}
		return literalNode{value: f}, nil
	case token.TRUE:
		return literalNode{value: true}, nil
	case token.FALSE:
		return literalNode{value: false}, nil
	case token.NULL:
		return literalNode{value: nil}, nil
	}
	return nil, fmt.Errorf("%s: unsupported literal %s", lit.Pos(), lit.Value)
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, "_", "")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	i, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return float64(i), nil
}
