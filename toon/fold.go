package toon

import "strings"

// FoldMode controls key folding on encode: collapsing a chain of
// single-entry objects into one dotted key, e.g.
//
//	data:              data.metadata.items: [1,2,3]
//	  metadata:    =>
//	    items: [1,2,3]
//
// Folding is the encode-side mirror of path expansion (ExpandMode).
type FoldMode uint8

const (
	// FoldOff disables key folding.
	FoldOff FoldMode = iota
	// FoldSafe folds only chains whose keys are unambiguous: bare-safe and
	// dot-free, so the folded key splits back into the original segments.
	FoldSafe
)

// ExpandMode controls path expansion on decode: splitting a dotted key into
// nested objects. It is the decode-side mirror of key folding.
type ExpandMode uint8

const (
	// ExpandOff keeps dotted keys verbatim.
	ExpandOff ExpandMode = iota
	// ExpandSafe expands a dotted key when every segment is bare-safe and
	// non-empty; other keys are kept verbatim.
	ExpandSafe
)

// foldChain collapses key and its value while the value is a single-entry
// object with a foldable key.
func foldChain(key string, v Value) (string, Value) {
	if !foldableKey(key) {
		return key, v
	}
	for {
		obj, ok := v.(Object)
		if !ok || obj.Len() != 1 {
			return key, v
		}
		child := obj.Fields()[0]
		if !foldableKey(child.Name) {
			return key, v
		}
		key = key + "." + child.Name
		v = child.Value
	}
}

// A key may take part in folding or expansion only when it is non-empty,
// bare-safe, and contains no dot of its own.
func foldableKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if !isBareKeyChar(c) || c == '.' {
			return false
		}
	}
	return true
}

// expandablePath splits a dotted key into its segments if every segment is
// foldable. A key with no dot, or with any unsafe segment, is not expanded.
func expandablePath(key string) ([]string, bool) {
	if !strings.Contains(key, ".") {
		return nil, false
	}
	segments := strings.Split(key, ".")
	for _, seg := range segments {
		if !foldableKey(seg) {
			return nil, false
		}
	}
	return segments, true
}
