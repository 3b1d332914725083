package querysrc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var jsIdent = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// quote renders s as a double-quoted string literal valid in both
// JavaScript and Python.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func formatNumber(v any) (string, bool) {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val), true
	case json.Number:
		return val.String(), true
	}
	return "", false
}

// formatTime prints midnight UTC as a bare date, anything else as RFC 3339.
func formatTime(t time.Time) string {
	u := t.UTC()
	if u.Equal(u.Truncate(24 * time.Hour)) {
		return u.Format("2006-01-02")
	}
	return u.Format(time.RFC3339Nano)
}

// javascript emits dotted access with optional chaining.
type javascript struct{}

func (javascript) defaultIndent() int { return 2 }

func (javascript) function(name, indent, body string) string {
	return "function " + name + "(item) {\n" + indent + "return " + body + ";\n}\n"
}

func (javascript) helper(h helper, u string) string {
	switch h {
	case numHelper:
		return "function _num(v) {\n" +
			u + "if (typeof v === \"string\" && /[xXbBoO_]/.test(v)) return 0;\n" +
			u + "const n = Number(v);\n" +
			u + "return Number.isFinite(n) ? n : 0;\n" +
			"}\n\n"
	case boolHelper:
		return "function _bool(v) {\n" +
			u + "if (typeof v === \"string\") return [\"true\", \"1\"].includes(v.trim().toLowerCase());\n" +
			u + "if (typeof v === \"number\") return Number.isFinite(v) && v !== 0;\n" +
			u + "return v === true;\n" +
			"}\n\n"
	}
	return ""
}

func (javascript) and() string      { return "&&" }
func (javascript) or() string       { return "||" }
func (javascript) trueLit() string  { return "true" }
func (javascript) falseLit() string { return "false" }

func (javascript) comment(expr, note string) string {
	return expr + " /* " + note + " */"
}

func (javascript) access(path string) string {
	var b strings.Builder
	b.WriteString("item")
	for i, seg := range strings.Split(path, ".") {
		if i > 0 {
			b.WriteString("?.")
		}
		switch {
		case jsIdent.MatchString(seg) && i == 0:
			b.WriteString("." + seg)
		case jsIdent.MatchString(seg):
			b.WriteString(seg)
		default:
			b.WriteString("[" + quote(seg) + "]")
		}
	}
	return b.String()
}

func (javascript) literal(v any) string {
	if s, ok := formatNumber(v); ok {
		return s
	}
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case string:
		return quote(val)
	case time.Time:
		return quote(val.UTC().Format(time.RFC3339Nano))
	}
	return quote(fmt.Sprint(v))
}

func (javascript) number(acc string) string  { return "_num(" + acc + ")" }
func (javascript) boolean(acc string) string { return "_bool(" + acc + ")" }
func (javascript) date(acc string) string    { return "new Date(" + acc + ").getTime()" }

func (javascript) dateLiteral(v any) string {
	if t, ok := v.(time.Time); ok {
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return "null"
}

func (javascript) isNull(acc string) string  { return acc + " == null" }
func (javascript) notNull(acc string) string { return acc + " != null" }

func (javascript) isEmpty(acc string) string {
	return "(" + acc + " == null || " + acc + ` === "")`
}

func (javascript) notEmpty(acc string) string {
	return "(" + acc + " != null && " + acc + ` !== "")`
}

func (javascript) guard(acc, expr string) string {
	return "(" + acc + " != null && " + expr + ")"
}

func (javascript) not(expr string) string { return "!" + expr }

func (javascript) eq(a, b string) string  { return a + " === " + b }
func (javascript) neq(a, b string) string { return a + " !== " + b }

func (javascript) compare(a, op, b string) string { return a + " " + op + " " + b }

func (javascript) contains(acc, needle string) string {
	return "String(" + acc + ").toLowerCase().includes(" + needle + ")"
}

func (javascript) startsWith(acc, needle string) string {
	return "String(" + acc + ").toLowerCase().startsWith(" + needle + ")"
}

func (javascript) endsWith(acc, needle string) string {
	return "String(" + acc + ").toLowerCase().endsWith(" + needle + ")"
}

func (javascript) inList(value string, items []string) string {
	return "[" + strings.Join(items, ", ") + "].includes(" + value + ")"
}

func (javascript) between(value, lo, hi string) string {
	return "(" + value + " >= " + lo + " && " + value + " <= " + hi + ")"
}

// python emits dict lookups. Dates compare as ISO-8601 text.
type python struct{}

func (python) defaultIndent() int { return 4 }

func (python) function(name, indent, body string) string {
	return "def " + name + "(item):\n" + indent + "return " + body + "\n"
}

func (python) helper(h helper, u string) string {
	switch h {
	case numHelper:
		return "def _num(v):\n" +
			u + "if isinstance(v, bool):\n" +
			u + u + "return int(v)\n" +
			u + "if isinstance(v, (int, float)):\n" +
			u + u + "f = v\n" +
			u + "else:\n" +
			u + u + "s = str(v).strip()\n" +
			u + u + "try:\n" +
			u + u + u + "f = float(s) if \"_\" not in s else None\n" +
			u + u + "except ValueError:\n" +
			u + u + u + "f = None\n" +
			u + "return f if f is not None and f - f == 0 else 0\n" +
			"\n\n"
	case boolHelper:
		return "def _bool(v):\n" +
			u + "if isinstance(v, str):\n" +
			u + u + "return v.strip().lower() in (\"true\", \"1\")\n" +
			u + "if isinstance(v, bool):\n" +
			u + u + "return v\n" +
			u + "if isinstance(v, (int, float)):\n" +
			u + u + "return v - v == 0 and v != 0\n" +
			u + "return False\n" +
			"\n\n"
	}
	return ""
}

func (python) and() string      { return "and" }
func (python) or() string       { return "or" }
func (python) trueLit() string  { return "True" }
func (python) falseLit() string { return "False" }

func (python) comment(expr, note string) string {
	return expr + "  # " + note
}

func (python) access(path string) string {
	segs := strings.Split(path, ".")
	cur := "item"
	for i, seg := range segs {
		if i < len(segs)-1 {
			cur = "(" + cur + ".get(" + quote(seg) + ") or {})"
			continue
		}
		cur += ".get(" + quote(seg) + ")"
	}
	return cur
}

func (python) literal(v any) string {
	if s, ok := formatNumber(v); ok {
		return s
	}
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case string:
		return quote(val)
	case time.Time:
		return quote(formatTime(val))
	}
	return quote(fmt.Sprint(v))
}

func (python) number(acc string) string  { return "_num(" + acc + ")" }
func (python) boolean(acc string) string { return "_bool(" + acc + ")" }
func (python) date(acc string) string    { return "str(" + acc + ")" }

func (python) dateLiteral(v any) string {
	if t, ok := v.(time.Time); ok {
		return quote(formatTime(t))
	}
	return "None"
}

func (python) isNull(acc string) string  { return acc + " is None" }
func (python) notNull(acc string) string { return acc + " is not None" }

func (python) isEmpty(acc string) string  { return acc + ` in (None, "")` }
func (python) notEmpty(acc string) string { return acc + ` not in (None, "")` }

func (python) guard(acc, expr string) string {
	return "(" + acc + " is not None and " + expr + ")"
}

func (python) not(expr string) string { return "not " + expr }

func (python) eq(a, b string) string  { return a + " == " + b }
func (python) neq(a, b string) string { return a + " != " + b }

func (python) compare(a, op, b string) string { return a + " " + op + " " + b }

func (python) contains(acc, needle string) string {
	return needle + " in str(" + acc + ").lower()"
}

func (python) startsWith(acc, needle string) string {
	return "str(" + acc + ").lower().startswith(" + needle + ")"
}

func (python) endsWith(acc, needle string) string {
	return "str(" + acc + ").lower().endswith(" + needle + ")"
}

func (python) inList(value string, items []string) string {
	return value + " in [" + strings.Join(items, ", ") + "]"
}

func (python) between(value, lo, hi string) string {
	return "(" + lo + " <= " + value + " <= " + hi + ")"
}
