// Package query provides the condition tree that describes a boolean filter.
//
// A tree is a root Group whose children are Conditions (leaves) and nested
// Groups. A Group folds its children with AND (all true) or OR (any true);
// an empty Group is vacuously true.
//
// SEALED INTERFACE:
//
// Node is sealed with a marker method, so only *Condition and *Group
// implement it. Evaluators and compilers switch over exactly these two
// types:
//
//	switch n := node.(type) {
//	case *query.Condition:
//	    // leaf
//	case *query.Group:
//	    // recurse into n.Children
//	}
//
// IMMUTABLE EDITS:
//
// Every edit function (AddCondition, AddGroup, RemoveNode, UpdateCondition,
// UpdateGroup, MoveNode) clones the whole tree, applies the change to the
// clone, and returns the clone. The tree passed in is never modified, so a
// host may keep evaluating an old tree while a new one is built and may
// detect changes by pointer comparison.
//
// IDENTITY:
//
// Constructors assign a fresh id from an IDGenerator. The default generator
// produces UUIDv7 strings; tests use a deterministic generator. Ids must be
// unique within a tree; Validate reports duplicates.
package query
