package merge

import "container/heap"

// Job is one merge candidate published to the heap: a pair, the pair
// count at the moment it was published, and the set of indices of every
// word that contains it. A word whose occurrences have since been merged
// away can remain in the set; merging there finds nothing.
//
// A Job is never mutated once pushed. When a pair's count changes, the
// learner pushes a fresh Job rather than updating this one in place — the
// old entry is left for the staleness check in Phase 3 step 2 to discard
// lazily when it is eventually popped. This is cheaper than a heap
// decrease-key and is the behavior spec.md documents as correct.
type Job struct {
	Pair      Pair
	Count     uint64
	Positions map[int]struct{}
}

// jobHeap is a max-heap of *Job ordered by (count desc, pair asc), matching
// the tie-break rule spec.md fixes for determinism: among jobs with equal
// count, the lexicographically smaller pair is popped first.
type jobHeap []*Job

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].Count != h[j].Count {
		return h[i].Count > h[j].Count
	}
	return pairLess(h[i].Pair, h[j].Pair)
}

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x interface{}) {
	*h = append(*h, x.(*Job))
}

func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	job := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return job
}

var _ heap.Interface = (*jobHeap)(nil)
