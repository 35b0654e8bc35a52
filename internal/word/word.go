// Package word implements the mutable id sequence representing one
// pre-token during training, and the pair-aware in-place merge the merge
// learner drives.
package word

// Pair is an ordered adjacent pair of token ids inside a Word.
type Pair struct {
	Left, Right uint32
}

// Delta is a signed change to the occurrence count of a pair, produced by
// MergePair. The caller (the merge learner) aggregates deltas across every
// word a merge touches; Word itself never looks at global pair counts.
type Delta struct {
	Pair  Pair
	Count int32
}

// Word is an ordered sequence of token ids representing one pre-token. It
// is created by mapping each base unit of a pre-token to its id, mutated
// only by MergePair during training, and discarded when training ends.
type Word struct {
	ids []uint32
}

// New returns a Word over a copy of ids.
func New(ids []uint32) *Word {
	cp := make([]uint32, len(ids))
	copy(cp, ids)
	return &Word{ids: cp}
}

// IDs returns the current id sequence. Callers must not mutate it directly.
func (w *Word) IDs() []uint32 { return w.ids }

// Len returns the number of ids currently in the word.
func (w *Word) Len() int { return len(w.ids) }

// Pairs returns the adjacent-pair stream [(ids[0],ids[1]), (ids[1],ids[2]), ...].
func (w *Word) Pairs() []Pair {
	if len(w.ids) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(w.ids)-1)
	for i := 0; i+1 < len(w.ids); i++ {
		pairs = append(pairs, Pair{Left: w.ids[i], Right: w.ids[i+1]})
	}
	return pairs
}

// MergePair scans left-to-right replacing every non-overlapping occurrence
// of pair with newID, and returns the (pair, +-1) deltas the caller must
// fold into its global pair counts.
//
// Overlapping occurrences such as "a a a a" under rule (a,a) collapse to
// floor(n/2) merges, not n-1: once a match is applied at position i, the
// scan resumes at i+1 (the position just past the freshly inserted id), so
// the inserted id is never re-examined against the same rule.
func (w *Word) MergePair(pair Pair, newID uint32) []Delta {
	var deltas []Delta
	ids := w.ids

	i := 0
	for i+1 < len(ids) {
		if ids[i] != pair.Left || ids[i+1] != pair.Right {
			i++
			continue
		}

		if i > 0 {
			deltas = append(deltas, Delta{Pair{ids[i-1], ids[i]}, -1})
		}
		if i+2 < len(ids) {
			deltas = append(deltas, Delta{Pair{ids[i+1], ids[i+2]}, -1})
		}

		ids[i] = newID
		ids = append(ids[:i+1], ids[i+2:]...)

		if i > 0 {
			deltas = append(deltas, Delta{Pair{ids[i-1], ids[i]}, 1})
		}
		if i+1 < len(ids) {
			deltas = append(deltas, Delta{Pair{ids[i], ids[i+1]}, 1})
		}

		i++
	}

	w.ids = ids
	return deltas
}
