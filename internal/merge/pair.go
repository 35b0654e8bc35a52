// Package merge implements the incremental Byte-Pair merge-learning engine:
// parallel initial pair counting, a stale-tolerant priority queue of merge
// candidates, and the merge loop that turns a target vocabulary size into
// an ordered list of merge rules.
package merge

import "github.com/agentstation/subword/internal/word"

// Pair is an ordered adjacent pair of token ids.
type Pair = word.Pair

// Rule is one learned merge: pair -> the id it was replaced with, in the
// order the merge loop discovered it.
type Rule struct {
	Pair  Pair
	NewID uint32
}

// pairLess reports whether a sorts before b under the tie-break order the spec
// fixes for equal-count heap entries: lexicographically smaller pair wins.
func pairLess(a, b Pair) bool {
	if a.Left != b.Left {
		return a.Left < b.Left
	}
	return a.Right < b.Right
}
