// Package harness runs conformance scenarios for filter trees.
//
// A scenario bundles a field set, a record set, one query tree and the
// expected outcome. Run validates the tree, evaluates it with the engine,
// compiles it to SQL and text, and compares everything against the
// scenario's expectations.
//
// # Scenario Format
//
//	name: adults_or_oslo
//	description: "Adults, or anyone living in Oslo"
//	table: people
//	sql_check: true
//	fields:
//	  - {key: age, title: Age, type: number}
//	records:
//	  - {id: 1, age: 17}
//	query:
//	  id: root
//	  type: group
//	  logic: OR
//	  children:
//	    - {id: adult, type: condition, field: age, operator: ">=", value: 18}
//	expect:
//	  valid: true
//	  count: 1
//	  ids: [1]
//	  sql: '"people"."age" >= 18'
//	  text: 'Age is greater than or equal to 18'
//
// query accepts either a bare group or a versioned envelope. Every expect
// key is optional; ids are matched in record order against each record's
// "id" value, errors against the validation codes in discovery order.
//
// With sql_check the records are also loaded into an in-memory SQLite
// table and the compiled WHERE fragment must select the same records as
// the engine.
//
// # Golden Snapshots
//
// RunWithGolden writes a canonical JSON snapshot of the result to
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
