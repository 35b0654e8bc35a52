package bpe

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/subword/internal/merge"
	"github.com/agentstation/subword/internal/pretoken"
	"github.com/agentstation/subword/internal/vocab"
)

// Tokenizer is a trainable byte-level or character-level BPE tokenizer.
// The zero value is not usable; construct one with New.
//
// Once Train or TrainFromIterator returns, a Tokenizer's Vocabulary and
// merge rules are read-only; Encode, Decode, EncodeBatch and DecodeBatch
// are safe to call concurrently from multiple goroutines without locking.
type Tokenizer struct {
	cfg       config
	splitter  *pretoken.Splitter
	vocabulary *vocab.Vocabulary
	rules     []merge.Rule
	ruleTable merge.RuleTable
	cache     *encodeCache

	// trainMu serializes Train/TrainFromIterator calls against each
	// other; it is never held during Encode/Decode.
	trainMu sync.Mutex
}

// New constructs an untrained Tokenizer. Without WithPattern, the default
// GPT-4-style pattern is used; without WithVariant, BBPE.
func New(opts ...Option) (*Tokenizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	pattern := cfg.pattern
	if pattern == "" {
		pattern = pretoken.DefaultPattern
	}
	splitter, err := pretoken.New(pattern)
	if err != nil {
		return nil, newErr(InvalidRegex, "new", err)
	}
	cfg.pattern = pattern

	t := &Tokenizer{
		cfg:        cfg,
		splitter:   splitter,
		vocabulary: vocab.New(),
		ruleTable:  merge.RuleTable{},
	}
	if cfg.cacheSize != 0 {
		t.cache = newEncodeCache(cfg.cacheSize)
	}
	return t, nil
}

// VocabSize returns the number of entries currently in the vocabulary.
func (t *Tokenizer) VocabSize() int { return t.vocabulary.Len() }

// GetVocab returns a copy of the id->token vocabulary.
func (t *Tokenizer) GetVocab() map[uint32][]byte {
	out := make(map[uint32][]byte, t.vocabulary.Len())
	t.vocabulary.Iter(func(id uint32, tok []byte) bool {
		cp := make([]byte, len(tok))
		copy(cp, tok)
		out[id] = cp
		return true
	})
	return out
}

// GetMerges returns a copy of the learned merge rules in the order they
// were discovered.
func (t *Tokenizer) GetMerges() []merge.Rule {
	out := make([]merge.Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// GetMergeableRanks returns pair -> new_id for every learned rule. Smaller
// new_id means the rule was learned earlier and has higher priority under
// rank-priority encoding.
func (t *Tokenizer) GetMergeableRanks() map[merge.Pair]uint32 {
	out := make(map[merge.Pair]uint32, len(t.ruleTable))
	for k, v := range t.ruleTable {
		out[k] = v
	}
	return out
}

// Pattern returns the compiled pre-tokenizer pattern.
func (t *Tokenizer) Pattern() string { return t.cfg.pattern }

// Variant returns the id-ification scheme this Tokenizer uses.
func (t *Tokenizer) Variant() Variant { return t.cfg.variant }

// Encode splits text into pre-tokens, id-ifies each one, applies the
// learned merge rules per the configured MergeStrategy, and concatenates
// the results.
func (t *Tokenizer) Encode(text string) ([]uint32, error) {
	pretoks, err := t.splitter.Split(text)
	if err != nil {
		return nil, newErr(Encoding, "encode", err)
	}

	var out []uint32
	for _, pt := range pretoks {
		ids, err := t.encodePretoken(pt)
		if err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}

func (t *Tokenizer) encodePretoken(pretok string) ([]uint32, error) {
	if t.cache != nil {
		if cached, ok := t.cache.get(pretok); ok {
			return cached, nil
		}
	}

	// A pre-token already present whole in the vocabulary needs no
	// merging at all.
	if id, ok := t.vocabulary.GetByToken([]byte(pretok)); ok {
		result := []uint32{id}
		if t.cache != nil {
			t.cache.put(pretok, result)
		}
		return result, nil
	}

	ids, err := t.idify(pretok)
	if err != nil {
		return nil, err
	}

	var result []uint32
	switch t.cfg.mergeStrategy {
	case RankPriority:
		result = merge.RankPriorityApply(ids, t.ruleTable)
	default:
		result = merge.GreedyApply(ids, t.ruleTable)
	}

	if t.cache != nil {
		t.cache.put(pretok, result)
	}
	return result, nil
}

// idify maps a pre-token to its initial id sequence per the configured
// Variant, before any merges are applied. Both variants only read the
// vocabulary here: CharBPE's lazy scalar seeding happens once, while
// building the training corpus, not on every Encode call.
func (t *Tokenizer) idify(pretok string) ([]uint32, error) {
	switch t.cfg.variant {
	case CharBPE:
		return t.idifyChar(pretok)
	default:
		return t.idifyBBPE(pretok)
	}
}

func (t *Tokenizer) idifyBBPE(pretok string) ([]uint32, error) {
	raw := []byte(pretok)
	ids := make([]uint32, len(raw))
	for i, b := range raw {
		if _, ok := t.vocabulary.GetByID(uint32(b)); !ok {
			return nil, newErrf(Encoding, "encode", "byte 0x%02x missing from vocabulary", b)
		}
		ids[i] = uint32(b)
	}
	return ids, nil
}

func (t *Tokenizer) idifyChar(pretok string) ([]uint32, error) {
	ids := make([]uint32, 0, len(pretok))
	for _, r := range pretok {
		id, ok := t.vocabulary.GetByToken([]byte(string(r)))
		if !ok {
			return nil, newErrf(Encoding, "encode", "rune %q missing from vocabulary", r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode reconstructs the text represented by ids. For CharBPE this
// always succeeds if every id is known. For BBPE the concatenated bytes
// must form valid UTF-8; if they don't, decode fails rather than silently
// producing replacement characters.
func (t *Tokenizer) Decode(ids []uint32) (string, error) {
	var buf strings.Builder
	for _, id := range ids {
		tok, ok := t.vocabulary.GetByID(id)
		if !ok {
			return "", newErrf(Decoding, "decode", "%w: %d", errIDNotFound, id)
		}
		buf.Write(tok)
	}
	out := buf.String()
	if t.cfg.variant == BBPE && !isValidUTF8(out) {
		return "", newErrf(Decoding, "decode", "decoded bytes are not valid utf-8")
	}
	return out, nil
}

// EncodeBatch runs Encode over every text independently, fanned out across
// the Tokenizer's configured worker count per spec.md §5's "batch
// encode/decode across independent inputs" data-parallel phase. Encode
// has no shared mutable state across calls (the only thing it touches
// besides the read-only vocabulary/rule table is the encode cache, which
// is already safe for concurrent use), so this is the same bounded
// fan-out shape as internal/merge's Phase 1 counting.
func (t *Tokenizer) EncodeBatch(texts []string) ([][]uint32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]uint32, len(texts))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(batchConcurrency(t.cfg.workers, len(texts)))
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			ids, err := t.Encode(text)
			if err != nil {
				return err
			}
			out[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeBatch runs Decode over every id sequence independently, fanned out
// the same way EncodeBatch is.
func (t *Tokenizer) DecodeBatch(idsList [][]uint32) ([]string, error) {
	if len(idsList) == 0 {
		return nil, nil
	}
	out := make([]string, len(idsList))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(batchConcurrency(t.cfg.workers, len(idsList)))
	for i, ids := range idsList {
		i, ids := i, ids
		g.Go(func() error {
			text, err := t.Decode(ids)
			if err != nil {
				return err
			}
			out[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// batchConcurrency bounds an errgroup's SetLimit to at least 1 and at most
// n, so a non-positive configured worker count (sequential elsewhere)
// doesn't stall the group and an input-sized corpus doesn't oversubscribe.
func batchConcurrency(workers, n int) int {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	return workers
}
