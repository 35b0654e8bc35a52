package merge

import (
	"container/heap"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/subword/internal/vocab"
	"github.com/agentstation/subword/internal/word"
)

// ProgressFunc is called after every merge with the number done and the
// total planned, so a caller can report training progress. It may be nil.
type ProgressFunc func(done, total int)

// Config bounds one training run.
type Config struct {
	// TargetVocabSize is the vocabulary size to stop at.
	TargetVocabSize int
	// NextID is the first id a learned merge rule may allocate. For a
	// dense id-ification scheme (BBPE's 0..255 byte seed) this equals
	// vocabulary.Len(); for a scheme whose ids are not contiguous from
	// zero (character-level BPE's ids are Unicode scalar values), the
	// caller must track the true next-free id itself (max seeded
	// id + 1) and pass it here rather than relying on Len().
	NextID uint32
	// Workers bounds Phase 1's fan-out. <= 1 means sequential counting.
	Workers int
	// Progress, if non-nil, is invoked once per completed merge.
	Progress ProgressFunc
}

// Train runs Phases 1-3 of the merge-learning algorithm against words,
// whose i-th entry occurs counts[i] times in the corpus, seeding new ids
// starting at cfg.NextID. It mutates vocabulary and every Word in words in
// place, and returns the ordered list of learned rules.
//
// Train never rescans the corpus: all work inside the merge loop is
// proportional to how many words the popped pair actually touches.
func Train(ctx context.Context, vocabulary *vocab.Vocabulary, words []*word.Word, counts []int64, cfg Config) ([]Rule, error) {
	if len(words) != len(counts) {
		return nil, fmt.Errorf("merge: words and counts length mismatch: %d vs %d", len(words), len(counts))
	}

	initialVocabSize := vocabulary.Len()
	numMerges := cfg.TargetVocabSize - initialVocabSize
	if numMerges <= 0 {
		return nil, nil
	}

	pairCounts, positions, err := countPairsParallel(ctx, words, counts, cfg.Workers)
	if err != nil {
		return nil, err
	}

	h := buildHeap(pairCounts, positions)

	rules := make([]Rule, 0, numMerges)
	mergesDone := 0

	for mergesDone < numMerges && h.Len() > 0 {
		top := heap.Pop(&h).(*Job)

		// Staleness check (Phase 3 step 2): discard if the pair no longer
		// exists, or if the live count has moved since this job was
		// published.
		liveCount, ok := pairCounts.Get(top.Pair)
		if !ok || uint64(liveCount) != top.Count {
			continue
		}

		newID := cfg.NextID + uint32(mergesDone)

		leftTok, ok := vocabulary.GetByID(top.Pair.Left)
		if !ok {
			return nil, fmt.Errorf("merge: pair %v references unknown id %d", top.Pair, top.Pair.Left)
		}
		rightTok, ok := vocabulary.GetByID(top.Pair.Right)
		if !ok {
			return nil, fmt.Errorf("merge: pair %v references unknown id %d", top.Pair, top.Pair.Right)
		}
		newTok := make([]byte, 0, len(leftTok)+len(rightTok))
		newTok = append(newTok, leftTok...)
		newTok = append(newTok, rightTok...)
		vocabulary.Insert(newID, newTok)
		rules = append(rules, Rule{Pair: top.Pair, NewID: newID})

		updates := make(map[Pair]int64)

		for wordIdx := range top.Positions {
			deltas := words[wordIdx].MergePair(top.Pair, newID)
			for _, d := range deltas {
				updates[d.Pair] += int64(d.Count) * counts[wordIdx]
				addPosition(positions, d.Pair, wordIdx)
			}
		}

		// top.Positions lists every word holding top.Pair, so no
		// occurrence of it is left in the corpus.
		delete(pairCounts, top.Pair)
		delete(updates, top.Pair)

		for pair, delta := range updates {
			newCount := pairCounts.Add(pair, delta)
			if newCount <= 0 {
				continue
			}
			heap.Push(&h, &Job{
				Pair:      pair,
				Count:     uint64(newCount),
				Positions: positions[pair],
			})
		}

		mergesDone++
		if cfg.Progress != nil {
			cfg.Progress(mergesDone, numMerges)
		}
	}

	return rules, nil
}

func buildHeap(pairCounts PairCounts, positions map[Pair]map[int]struct{}) jobHeap {
	h := make(jobHeap, 0, len(pairCounts))
	for pair, count := range pairCounts {
		if count <= 0 {
			continue
		}
		h = append(h, &Job{Pair: pair, Count: uint64(count), Positions: positions[pair]})
	}
	heap.Init(&h)
	return h
}

// countPairsParallel implements Phase 1: a parallel per-worker local count
// reduced associatively into the corpus-wide PairCounts, plus the
// positions index of which word indices contain each pair.
func countPairsParallel(ctx context.Context, words []*word.Word, counts []int64, numWorkers int) (PairCounts, map[Pair]map[int]struct{}, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(words) {
		numWorkers = len(words)
	}

	pairCounts := NewPairCounts(len(words))
	positions := make(map[Pair]map[int]struct{})

	if len(words) == 0 {
		return pairCounts, positions, nil
	}

	if numWorkers <= 1 {
		for i, w := range words {
			for _, pair := range w.Pairs() {
				pairCounts[pair] += counts[i]
				addPosition(positions, pair, i)
			}
		}
		return pairCounts, positions, nil
	}

	chunkSize := (len(words) + numWorkers - 1) / numWorkers
	locals := make([]PairCounts, numWorkers)

	g, _ := errgroup.WithContext(ctx)
	for worker := 0; worker < numWorkers; worker++ {
		worker := worker
		start := worker * chunkSize
		end := start + chunkSize
		if end > len(words) {
			end = len(words)
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			local := NewPairCounts(chunkSize)
			for i := start; i < end; i++ {
				for _, pair := range words[i].Pairs() {
					local[pair] += counts[i]
				}
			}
			locals[worker] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, local := range locals {
		for pair, c := range local {
			pairCounts[pair] += c
		}
	}

	// positions indexes the full word array, independent of worker
	// chunking; spec.md leaves this step's parallelism optional, so it
	// runs as one sequential pass.
	for i, w := range words {
		for _, pair := range w.Pairs() {
			addPosition(positions, pair, i)
		}
	}

	return pairCounts, positions, nil
}

func addPosition(positions map[Pair]map[int]struct{}, pair Pair, wordIdx int) {
	set, ok := positions[pair]
	if !ok {
		set = make(map[int]struct{})
		positions[pair] = set
	}
	set[wordIdx] = struct{}{}
}
