// Package codec reads and writes condition trees.
//
// Trees travel inside a versioned envelope:
//
//	{"version": 1, "query": {"id": "...", "type": "group", "logic": "AND", "children": [...]}}
//
// JSON and YAML carry the same shape. Payloads without a version are
// rejected unless AllowUnversioned is given, and payloads from a newer
// version are always rejected; no migration is attempted.
//
// MarshalCanonical and Fingerprint give a stable byte form and content hash
// for change detection: object keys sorted by UTF-16 code units, strings
// NFC-normalized, no HTML escaping, no insignificant whitespace.
package codec
