// Package toon implements TOON (Token-Oriented Object Notation), a compact,
// human-readable, line-oriented serialization format intended as a
// lower-token alternative to JSON.
//
// TOON represents the same data model as JSON (null, booleans, numbers,
// strings, arrays, and objects) using indentation instead of braces, and a
// tabular form for arrays of uniform objects that eliminates per-element key
// repetition:
//
//	users[2]{id,name,role}:
//	  1,Alice,admin
//	  2,Bob,user
//
// Encode renders a Value tree to TOON text; Decode parses TOON text back
// into a Value tree. The two are inverse operations: for any Value v built
// from this package's constructors, Decode(Encode(v)) yields a Value equal
// to v. Both are pure transformations over fully materialized inputs and are
// safe for concurrent use.
//
// Marshal and Unmarshal bridge between TOON text and native Go values in the
// manner of encoding/json.
package toon
