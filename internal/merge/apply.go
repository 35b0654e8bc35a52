package merge

import "container/heap"

// RuleTable maps a learned pair to the id it was replaced with. It is the
// lookup structure both merge-application strategies read from; training
// never mutates it once a rule is recorded.
type RuleTable map[Pair]uint32

// NewRuleTable builds a RuleTable from the ordered rule list Train
// returns.
func NewRuleTable(rules []Rule) RuleTable {
	rt := make(RuleTable, len(rules))
	for _, r := range rules {
		rt[r.Pair] = r.NewID
	}
	return rt
}

// GreedyApply implements spec.md's default encode-path merge application:
// repeated left-to-right passes, each collecting non-overlapping matches
// against the rule table and rebuilding the sequence, until a pass finds
// nothing left to merge.
//
// This is faster than RankPriorityApply and matches its output on nearly
// all practical inputs, but is not guaranteed to on pathological ones: a
// pass can apply a later-learned rule before an earlier one purely because
// of left-to-right position, where rank-priority would have ordered them
// by which was learned first.
func GreedyApply(ids []uint32, rules RuleTable) []uint32 {
	if len(rules) == 0 {
		return ids
	}
	cur := ids
	for {
		if len(cur) < 2 {
			return cur
		}
		type match struct {
			pos   int
			newID uint32
		}
		var matches []match
		for i := 0; i < len(cur)-1; i++ {
			if newID, ok := rules[Pair{Left: cur[i], Right: cur[i+1]}]; ok {
				matches = append(matches, match{pos: i, newID: newID})
				i++ // skip i+2 in the original indexing: don't overlap
			}
		}
		if len(matches) == 0 {
			return cur
		}
		next := make([]uint32, 0, len(cur))
		mi := 0
		for i := 0; i < len(cur); i++ {
			if mi < len(matches) && matches[mi].pos == i {
				next = append(next, matches[mi].newID)
				mi++
				i++ // drop the following element
				continue
			}
			next = append(next, cur[i])
		}
		cur = next
	}
}

// rankNode is one position in the doubly linked list RankPriorityApply
// merges over.
type rankNode struct {
	id        uint32
	origPos   int
	prev, next *rankNode
	deleted   bool
	rank      uint32
	heapIndex int
}

type rankHeap []*rankNode

func (h rankHeap) Len() int { return len(h) }

func (h rankHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].origPos < h[j].origPos
}

func (h rankHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *rankHeap) Push(x interface{}) {
	n := *h
	node := x.(*rankNode)
	node.heapIndex = len(n)
	*h = append(n, node)
}

func (h *rankHeap) Pop() interface{} {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.heapIndex = -1
	*h = old[:n-1]
	return node
}

// RankPriorityApply implements the strictly-correct alternative merge
// strategy spec.md §4.6 describes: at every step, merge the adjacent pair
// whose rule was learned earliest (smallest new_id), then repeat. It is
// the opt-in, slower, always-correct counterpart to GreedyApply.
func RankPriorityApply(ids []uint32, rules RuleTable) []uint32 {
	if len(ids) == 0 {
		return ids
	}
	if len(rules) == 0 || len(ids) == 1 {
		return ids
	}

	nodes := make([]*rankNode, len(ids))
	for i, id := range ids {
		nodes[i] = &rankNode{id: id, origPos: i}
	}
	for i := 0; i+1 < len(nodes); i++ {
		nodes[i].next = nodes[i+1]
		nodes[i+1].prev = nodes[i]
	}

	h := &rankHeap{}
	heap.Init(h)
	pushCandidate := func(left *rankNode) {
		if left == nil || left.next == nil {
			return
		}
		newID, ok := rules[Pair{Left: left.id, Right: left.next.id}]
		if !ok {
			return
		}
		left.rank = newID
		heap.Push(h, left)
	}
	for n := nodes[0]; n != nil && n.next != nil; n = n.next {
		pushCandidate(n)
	}

	first := nodes[0]
	for h.Len() > 0 {
		left := heap.Pop(h).(*rankNode)
		if left.deleted || left.next == nil || left.next.deleted {
			continue
		}
		right := left.next

		// A stale heap entry for left is only caught by the deleted
		// flag, so any merge touching left's neighborhood must mark
		// left itself deleted and replace it with a fresh node -
		// otherwise an old heap entry for left (pushed against a
		// pair that no longer exists once left's next changes) would
		// still look valid and fire with the wrong pair.
		if left.prev != nil {
			oldPrev := left.prev
			oldPrev.deleted = true
			newPrev := &rankNode{id: oldPrev.id, origPos: oldPrev.origPos, prev: oldPrev.prev, next: oldPrev.next}
			left.prev = newPrev
			if newPrev.prev != nil {
				newPrev.prev.next = newPrev
			} else {
				first = newPrev
			}
		}

		newID := rules[Pair{Left: left.id, Right: right.id}]
		merged := &rankNode{id: newID, origPos: left.origPos, prev: left.prev, next: right.next}

		left.deleted = true
		right.deleted = true

		if merged.prev != nil {
			merged.prev.next = merged
		} else {
			first = merged
		}
		if merged.next != nil {
			merged.next.prev = merged
		}

		if merged.prev != nil {
			pushCandidate(merged.prev)
		}
		pushCandidate(merged)
	}

	out := make([]uint32, 0, len(ids))
	for n := first; n != nil; n = n.next {
		out = append(out, n.id)
	}
	return out
}
