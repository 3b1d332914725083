package harness

import (
	"fmt"
	"slices"
)

// ExpectationError describes one unmet expectation.
type ExpectationError struct {
	Key      string
	Expected any
	Actual   any
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("expect.%s: expected %v, got %v", e.Key, e.Expected, e.Actual)
}

// checkExpect compares a result against the keys set in expect.
func checkExpect(expect Expect, result *Result) []*ExpectationError {
	var failures []*ExpectationError
	fail := func(key string, expected, actual any) {
		failures = append(failures, &ExpectationError{Key: key, Expected: expected, Actual: actual})
	}

	if expect.Valid != nil && *expect.Valid != result.Valid {
		fail("valid", *expect.Valid, result.Valid)
	}
	if expect.Errors != nil && !slices.Equal(expect.Errors, result.Codes) {
		fail("errors", expect.Errors, result.Codes)
	}
	if expect.Count != nil && *expect.Count != result.Count {
		fail("count", *expect.Count, result.Count)
	}
	if expect.IDs != nil && !sameIDs(expect.IDs, result.IDs) {
		fail("ids", expect.IDs, result.IDs)
	}
	if expect.SQL != "" && expect.SQL != result.SQL {
		fail("sql", expect.SQL, result.SQL)
	}
	if expect.Text != "" && expect.Text != result.Text {
		fail("text", expect.Text, result.Text)
	}
	return failures
}

// sameIDs compares two id lists in order. Ids are compared by their
// printed form so YAML integers match JSON numbers.
func sameIDs(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if fmt.Sprint(a[i]) != fmt.Sprint(b[i]) {
			return false
		}
	}
	return true
}
