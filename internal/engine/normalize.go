package engine

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/filtertree/internal/field"
)

// epoch is what an unparseable date normalizes to.
var epoch = time.UnixMilli(0).UTC()

// normalize coerces v into the canonical comparable form of t. Text,
// select, multiselect and undeclared fields pass through unchanged.
func (ev *evaluation) normalize(t field.Type, v any) any {
	if v == nil {
		return nil
	}
	switch t {
	case field.TypeNumber:
		return ToNumber(v)
	case field.TypeDate:
		return ToDate(v, ev.dateLayouts)
	case field.TypeBoolean:
		return ToBool(v)
	}
	return v
}

// ToNumber coerces v to float64. Numeric strings are parsed after trimming;
// anything unparseable is 0, and so are NaN and the infinities. Booleans are 1 and 0, times their epoch
// milliseconds.
func ToNumber(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		f, _ := parseNumber(val)
		return f
	case json.Number:
		f, _ := parseNumber(val.String())
		return f
	case time.Time:
		return float64(val.UnixMilli())
	}
	if f, ok := numeric(v); ok {
		return f
	}
	return 0
}

// ToDate coerces v to a time.Time. Strings are parsed with layouts in
// order, numbers are epoch milliseconds, and anything unparseable is the
// Unix epoch.
func ToDate(v any, layouts []string) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val != nil {
			return *val
		}
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range layouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	case json.Number:
		if ms, err := val.Int64(); err == nil {
			return time.UnixMilli(ms).UTC()
		}
	default:
		if f, ok := numeric(v); ok {
			return time.UnixMilli(int64(f)).UTC()
		}
	}
	return epoch
}

// ToBool coerces v to a boolean: true for true, for the strings "true" and
// "1" (trimmed, any case) and for non-zero numbers.
func ToBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		return s == "true" || s == "1"
	}
	if f, ok := numeric(v); ok {
		return f != 0
	}
	return false
}

// numeric reads any Go integer or float kind.
func numeric(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float()), true
	}
	return 0, false
}

// parseNumber parses a decimal number. NaN, infinities, hex floats and
// digit separators are not numbers here.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// numberLike reads numbers and json.Number, but not numeric strings.
func numberLike(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		return parseNumber(n.String())
	}
	return numeric(v)
}

// compare orders two normalized values. nil is least. Times compare by
// instant, numbers arithmetically and booleans false before true. A time or
// a number paired with another kind coerces the other side to match.
// Everything else compares as text with the locale collator.
func (ev *evaluation) compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	ta, aTime := a.(time.Time)
	tb, bTime := b.(time.Time)
	switch {
	case aTime && bTime:
		return ta.Compare(tb)
	case aTime:
		return ta.Compare(ToDate(b, ev.dateLayouts))
	case bTime:
		return ToDate(a, ev.dateLayouts).Compare(tb)
	}

	fa, aNum := numberLike(a)
	fb, bNum := numberLike(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(fa, fb)
	case aNum && isNumericString(b):
		return cmp.Compare(fa, ToNumber(b))
	case bNum && isNumericString(a):
		return cmp.Compare(ToNumber(a), fb)
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return boolRank(ba) - boolRank(bb)
		}
	}

	return ev.collator.CompareString(toText(a), toText(b))
}

// equal is strict equality of normalized values: same kind and same value.
// Numbers of different Go types are equal when numerically equal.
func (ev *evaluation) equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if fa, ok := numberLike(a); ok {
		fb, ok := numberLike(b)
		return ok && fa == fb
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ba == bb
	}
	return reflect.DeepEqual(a, b)
}

func isNumericString(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = parseNumber(s)
	return ok
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toText renders a value for text operators and collation.
func toText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}
