package bpe

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/subword/internal/merge"
	"github.com/agentstation/subword/internal/pretoken"
	"github.com/agentstation/subword/internal/word"
)

// DefaultTrainBufferSize is the number of pre-tokens TrainFromIterator
// accumulates before counting that buffer in parallel and folding it into
// the corpus-wide multiset, when the caller passes bufferSize <= 0.
const DefaultTrainBufferSize = 1 << 16

// TextIterator yields training texts one at a time. Next returns ok=false
// once exhausted, with err set only on a genuine read failure.
type TextIterator interface {
	Next() (text string, ok bool, err error)
}

// SliceIterator adapts a []string to TextIterator.
type SliceIterator struct {
	texts []string
	pos   int
}

// NewSliceIterator wraps texts as a TextIterator.
func NewSliceIterator(texts []string) *SliceIterator {
	return &SliceIterator{texts: texts}
}

// Next implements TextIterator.
func (it *SliceIterator) Next() (string, bool, error) {
	if it.pos >= len(it.texts) {
		return "", false, nil
	}
	text := it.texts[it.pos]
	it.pos++
	return text, true, nil
}

// Train learns merges from texts up to vocabSize, seeding the base
// vocabulary first (BBPE's 256 bytes, or CharBPE's lazily-discovered
// scalars) and any WithBaseTokens tokens. It is the in-memory convenience
// wrapper around TrainFromIterator, using DefaultTrainBufferSize and the
// Tokenizer's own configured pattern.
func (t *Tokenizer) Train(ctx context.Context, texts []string, vocabSize int) error {
	return t.TrainFromIterator(ctx, NewSliceIterator(texts), vocabSize, DefaultTrainBufferSize, "")
}

// TrainFromIterator streams training texts from iter rather than requiring
// the full corpus in memory at once, per spec.md §6/§9's bounded-buffer,
// two-phase streaming pattern: texts are read and split one at a time
// (the only step that must run under any host-side lock an iterator
// implementation needs), accumulating pre-tokens into a buffer; once the
// buffer reaches bufferSize pre-tokens (or the iterator is exhausted) it
// is counted in parallel and folded into the corpus-wide multiset, and the
// buffer is cleared. bufferSize <= 0 uses DefaultTrainBufferSize. Once the
// whole multiset is built, the incremental merge-learning engine runs a
// single time over it.
//
// pattern, if non-empty, overrides the Tokenizer's configured
// pre-tokenizer pattern for this and all future calls (spec.md §6's
// optional pattern? parameter) - the trained merge rules are only valid
// under the pattern that produced their pre-tokens, so Encode must keep
// using it afterward.
func (t *Tokenizer) TrainFromIterator(ctx context.Context, iter TextIterator, vocabSize, bufferSize int, pattern string) error {
	t.trainMu.Lock()
	defer t.trainMu.Unlock()

	if vocabSize < minVocabSize(t.cfg.variant) {
		return newErrf(Training, "train", "vocab size %d below minimum %d for variant %s", vocabSize, minVocabSize(t.cfg.variant), t.cfg.variant)
	}

	if pattern != "" {
		splitter, err := pretoken.New(pattern)
		if err != nil {
			return newErr(InvalidRegex, "train", err)
		}
		t.splitter = splitter
		t.cfg.pattern = pattern
	}
	if bufferSize <= 0 {
		bufferSize = DefaultTrainBufferSize
	}

	t.vocabulary.Clear()
	if t.cfg.variant == BBPE {
		seedBBPE(t.vocabulary)
	}
	seedBaseTokens(t.vocabulary, t.cfg.baseTokens)

	counts := make(map[string]int64)
	buf := make([]string, 0, bufferSize)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		local, err := countPretokensParallel(ctx, buf, t.cfg.workers)
		if err != nil {
			return err
		}
		for pt, c := range local {
			counts[pt] += c
		}
		buf = buf[:0]
		return nil
	}

	for {
		text, ok, err := iter.Next()
		if err != nil {
			return newErr(InvalidIterator, "train", err)
		}
		if !ok {
			break
		}
		pretoks, err := t.splitter.Split(text)
		if err != nil {
			return newErr(Training, "train", err)
		}
		buf = append(buf, pretoks...)
		if len(buf) >= bufferSize {
			if err := flush(); err != nil {
				return newErr(Training, "train", err)
			}
		}
	}
	if err := flush(); err != nil {
		return newErr(Training, "train", err)
	}

	words := make([]*word.Word, 0, len(counts))
	wordCounts := make([]int64, 0, len(counts))
	for pretok, count := range counts {
		ids, err := t.idifyForTraining(pretok)
		if err != nil {
			return err
		}
		words = append(words, word.New(ids))
		wordCounts = append(wordCounts, count)
	}

	nextID := uint32(0)
	if maxID, ok := t.vocabulary.MaxID(); ok {
		nextID = maxID + 1
	}

	rules, err := merge.Train(ctx, t.vocabulary, words, wordCounts, merge.Config{
		TargetVocabSize: vocabSize,
		NextID:          nextID,
		Workers:         t.cfg.workers,
		Progress:        t.cfg.progress,
	})
	if err != nil {
		return newErr(Training, "train", err)
	}

	t.rules = rules
	t.ruleTable = merge.NewRuleTable(rules)
	if t.cache != nil {
		t.cache = newEncodeCache(t.cache.capacity)
	}
	return nil
}

// countPretokensParallel implements the streaming API's "counts them in
// parallel" step: pretoks (one buffer's worth) is divided into contiguous
// chunks, one per worker, each building a local frequency map; the local
// maps are then reduced associatively, the same shape as internal/merge's
// Phase 1 pair counting.
func countPretokensParallel(ctx context.Context, pretoks []string, numWorkers int) (map[string]int64, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(pretoks) {
		numWorkers = len(pretoks)
	}
	if len(pretoks) == 0 {
		return map[string]int64{}, nil
	}
	if numWorkers <= 1 {
		out := make(map[string]int64, len(pretoks))
		for _, pt := range pretoks {
			out[pt]++
		}
		return out, nil
	}

	chunkSize := (len(pretoks) + numWorkers - 1) / numWorkers
	locals := make([]map[string]int64, numWorkers)

	g, _ := errgroup.WithContext(ctx)
	for worker := 0; worker < numWorkers; worker++ {
		worker := worker
		start := worker * chunkSize
		end := start + chunkSize
		if end > len(pretoks) {
			end = len(pretoks)
		}
		if start >= end {
			continue
		}
		g.Go(func() error {
			local := make(map[string]int64, end-start)
			for i := start; i < end; i++ {
				local[pretoks[i]]++
			}
			locals[worker] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(pretoks))
	for _, local := range locals {
		for pt, c := range local {
			out[pt] += c
		}
	}
	return out, nil
}

// idifyForTraining is idify's training-time counterpart: CharBPE seeds new
// scalars into the vocabulary as they're first observed instead of erroring
// on them, since the vocabulary isn't fixed yet at this point. Per spec.md
// §4.3/§4.7, a CharBPE id equals the Unicode scalar value itself, not a
// densely-allocated index - so unlike BBPE's contiguous 0..255 byte seed,
// the set of ids seeded here is sparse, and the merge learner's first
// allocated id must start above the largest scalar actually seen rather
// than above vocabulary.Len().
func (t *Tokenizer) idifyForTraining(pretok string) ([]uint32, error) {
	if t.cfg.variant != CharBPE {
		return t.idifyBBPE(pretok)
	}
	ids := make([]uint32, 0, len(pretok))
	for _, r := range pretok {
		id := uint32(r)
		if _, ok := t.vocabulary.GetByID(id); !ok {
			t.vocabulary.Insert(id, []byte(string(r)))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
