// Package engine interprets condition trees against in-memory records.
//
// The engine is the reference semantics for every compiler backend: a
// record passes a tree when folding the tree's conditions with their group
// connectives yields true.
//
// EVALUATION ORDER:
//
// For each condition:
//  1. Resolve the field's dot-path in the record; a missing segment is nil
//  2. custom-expression conditions evaluate their parsed expression
//  3. Null and emptiness checks inspect the raw value
//  4. Any other operator on a nil value is false
//  5. Value and operand are normalized by the field's declared type
//  6. The operator decides
//
// Groups fold with AND (all children true) or OR (any child true); an
// empty group is vacuously true.
//
// FAILURE MODEL:
//
// Soft failures (unknown operator, malformed range or list operand, failing
// custom expression) make the condition false and are logged at Warn.
// Hard failures (nesting deeper than the configured maximum, panics) abort
// Execute with Success=false. Execute never panics.
//
// CONCURRENCY:
//
// An Engine is immutable after New and safe for concurrent use. Each call
// builds its own collator and case folder; neither is shared across calls.
package engine
