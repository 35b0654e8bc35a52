// Package unigram implements Unigram's encode-side contract: Viterbi
// shortest-path segmentation over a pre-token given a vocabulary and
// externally supplied token log-probabilities. EM-style score
// optimization (training) is out of scope; scores are supplied by the
// caller, typically loaded from a trained model file.
package unigram

import (
	"fmt"
	"math"

	"github.com/agentstation/subword/internal/pretoken"
	"github.com/agentstation/subword/internal/vocab"
)

// Tokenizer segments text by finding, per pre-token, the subword sequence
// that maximizes total log-probability under externally supplied scores.
// The zero value is not usable; construct one with New.
type Tokenizer struct {
	splitter   *pretoken.Splitter
	vocabulary *vocab.Vocabulary
	logProbs   map[uint32]float64
	unkID      uint32
	unkScore   float64
	maxPieceLen int
}

// New constructs a Tokenizer. logProbs maps a vocabulary id to its trained
// log-probability; an id with no entry is treated as unreachable. unkID,
// scored unkScore, is a single-byte candidate at every byte position, so a
// byte no vocabulary entry covers still segments.
func New(pattern string, vocabulary *vocab.Vocabulary, logProbs map[uint32]float64, unkID uint32, unkScore float64) (*Tokenizer, error) {
	splitter, err := pretoken.New(pattern)
	if err != nil {
		return nil, err
	}
	maxLen := 1
	vocabulary.Iter(func(_ uint32, tok []byte) bool {
		if len(tok) > maxLen {
			maxLen = len(tok)
		}
		return true
	})
	return &Tokenizer{
		splitter:    splitter,
		vocabulary:  vocabulary,
		logProbs:    logProbs,
		unkID:       unkID,
		unkScore:    unkScore,
		maxPieceLen: maxLen,
	}, nil
}

// Encode splits text into pre-tokens and Viterbi-segments each one
// independently.
func (t *Tokenizer) Encode(text string) ([]uint32, error) {
	pretoks, err := t.splitter.Split(text)
	if err != nil {
		return nil, err
	}

	var out []uint32
	for _, pt := range pretoks {
		out = append(out, t.segment(pt)...)
	}
	return out, nil
}

// segment runs a standard Viterbi DP over byte positions 0..len(raw): for
// each end position, best[end] holds the highest-scoring way to reach it
// from position 0, considering every scored vocabulary piece ending there
// and a single unk byte scored unkScore.
func (t *Tokenizer) segment(pretok string) []uint32 {
	raw := []byte(pretok)
	n := len(raw)
	if n == 0 {
		return nil
	}

	negInf := math.Inf(-1)
	best := make([]float64, n+1)
	backID := make([]uint32, n+1)
	backPos := make([]int, n+1)
	for i := 1; i <= n; i++ {
		best[i] = negInf
	}

	for end := 1; end <= n; end++ {
		minStart := 0
		if end-t.maxPieceLen > minStart {
			minStart = end - t.maxPieceLen
		}
		for start := minStart; start < end; start++ {
			if best[start] == negInf {
				continue
			}
			id, ok := t.vocabulary.GetByToken(raw[start:end])
			if !ok {
				continue
			}
			score, ok := t.logProbs[id]
			if !ok {
				continue
			}
			total := best[start] + score
			if total > best[end] {
				best[end] = total
				backID[end] = id
				backPos[end] = start
			}
		}
		// A single unk byte is always a fallback path, so every position
		// stays reachable even through a gap in vocabulary coverage.
		start := end - 1
		if best[start] != negInf {
			total := best[start] + t.unkScore
			if total > best[end] {
				best[end] = total
				backID[end] = t.unkID
				backPos[end] = start
			}
		}
	}

	ids := make([]uint32, 0, n)
	pos := n
	for pos > 0 {
		ids = append(ids, backID[pos])
		pos = backPos[pos]
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

// Decode reconstructs text by concatenating each id's token bytes.
func (t *Tokenizer) Decode(ids []uint32) (string, error) {
	out := make([]byte, 0, len(ids))
	for _, id := range ids {
		tok, ok := t.vocabulary.GetByID(id)
		if !ok {
			return "", fmt.Errorf("unigram: unknown token id %d", id)
		}
		out = append(out, tok...)
	}
	return string(out), nil
}
