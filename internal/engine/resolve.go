package engine

import (
	"reflect"
	"strconv"
	"strings"
)

// Resolve walks a dot-path ("address.city", "tags.0") through record and
// returns the value found, or nil when any segment is missing.
//
// Supported containers:
//   - maps with string-kinded keys
//   - structs (a segment matches the json tag name first, then the Go
//     field name case-insensitively; unexported fields are never read)
//   - slices and arrays (a segment must be a decimal index)
//   - pointers and interfaces to any of the above
func Resolve(record any, path string) any {
	if path == "" {
		return nil
	}
	cur := record
	for _, seg := range strings.Split(path, ".") {
		if cur == nil {
			return nil
		}
		if m, ok := cur.(map[string]any); ok {
			cur = m[seg]
			continue
		}
		cur = step(reflect.ValueOf(cur), seg)
	}
	if isNil(cur) {
		return nil
	}
	return cur
}

func step(rv reflect.Value, seg string) any {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	var out reflect.Value
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		out = rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
	case reflect.Struct:
		out = structField(rv, seg)
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil
		}
		out = rv.Index(i)
	default:
		return nil
	}

	if !out.IsValid() || !out.CanInterface() {
		return nil
	}
	return out.Interface()
}

func structField(rv reflect.Value, seg string) reflect.Value {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == seg {
			return rv.Field(i)
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, seg) {
			return rv.Field(i)
		}
	}
	return reflect.Value{}
}

// isNil reports nil interfaces and nil pointers, maps, slices and funcs.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
