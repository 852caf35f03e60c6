// Package inference classifies relationships between entity types from
// their independently-declared reference fields.
package inference

// pairSeparator joins the two members of a pair key. Type names come from
// identifier-constrained declarations, so the separator cannot collide.
const pairSeparator = "::"

// PairKey returns the canonical unordered identifier for two type names.
// PairKey(a, b) == PairKey(b, a) for all pairs.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + pairSeparator + b
}
