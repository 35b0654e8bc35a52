package merge

// PairCounts is the live, corpus-wide occurrence count of every pair still
// present across all words. An entry absent from the map means count zero;
// this is how a fully-merged-away pair is forgotten.
type PairCounts map[Pair]int64

// NewPairCounts returns an empty PairCounts sized for n distinct pairs.
func NewPairCounts(n int) PairCounts {
	return make(PairCounts, n)
}

// Add adds delta to pair's count, removing the entry entirely if the
// result is <= 0. Returns the count after the update (0 if removed).
func (pc PairCounts) Add(pair Pair, delta int64) int64 {
	next := pc[pair] + delta
	if next <= 0 {
		delete(pc, pair)
		return 0
	}
	pc[pair] = next
	return next
}

// Get returns the live count for pair, or (0, false) if absent.
func (pc PairCounts) Get(pair Pair) (int64, bool) {
	c, ok := pc[pair]
	return c, ok
}
