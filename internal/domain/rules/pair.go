package rules

// CanonicalPair orders a two-user pair ascending so a relationship is
// stored under exactly one key regardless of which side initiated it.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
