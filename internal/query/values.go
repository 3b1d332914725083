package query

import (
	"reflect"
	"strings"
	"time"
)

// ValueList returns v as a list of operands when v is a slice or array of
// any element type. Strings and byte slices are not lists.
func ValueList(v any) ([]any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	case []byte, string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// RangeBounds returns the [min, max] pair of a range operand.
// ok is false unless v is a list of exactly two elements.
func RangeBounds(v any) (lo, hi any, ok bool) {
	list, isList := ValueList(v)
	if !isList || len(list) != 2 {
		return nil, nil, false
	}
	return list[0], list[1], true
}

// IsBlank reports whether v counts as "no value": nil, an all-whitespace
// string, or an empty list.
func IsBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	if list, ok := ValueList(v); ok {
		return len(list) == 0
	}
	return false
}

// cloneValue deep-copies an operand. Lists and maps are rebuilt; time.Time
// and other scalars are copied by value so their Go type is preserved.
func cloneValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64, time.Time:
		return val
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	}
	return cloneReflect(reflect.ValueOf(v)).Interface()
}

func cloneReflect(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneElem(rv.Index(i)))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElem(iter.Value()))
		}
		return out
	}
	return rv
}

// cloneElem clones a slice or map element, keeping interface-typed
// elements assignable to their container.
func cloneElem(rv reflect.Value) reflect.Value {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(reflect.ValueOf(cloneValue(rv.Interface())))
		return out
	}
	return cloneReflect(rv)
}

// valuesEqual compares operands structurally. time.Time values compare by
// instant rather than by representation.
func valuesEqual(a, b any) bool {
	ta, aIsTime := a.(time.Time)
	tb, bIsTime := b.(time.Time)
	if aIsTime || bIsTime {
		return aIsTime && bIsTime && ta.Equal(tb)
	}
	la, aIsList := ValueList(a)
	lb, bIsList := ValueList(b)
	if aIsList && bIsList {
		if len(la) != len(lb) || reflect.TypeOf(a) != reflect.TypeOf(b) {
			return false
		}
		for i := range la {
			if !valuesEqual(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
