// Package wordpiece implements WordPiece's encode-time longest-match
// segmentation over an externally trained vocabulary. It does not train a
// vocabulary; score optimization and vocabulary construction are the
// caller's responsibility.
package wordpiece

import (
	"strings"

	"github.com/agentstation/subword/internal/pretoken"
	"github.com/agentstation/subword/internal/vocab"
)

// ContinuationPrefix marks a subword that continues the previous one
// rather than starting a new word, WordPiece's standard "##" convention.
const ContinuationPrefix = "##"

// Tokenizer segments text into subwords by greedy longest-prefix lookup
// against a pre-built Vocabulary. The zero value is not usable; construct
// one with New.
type Tokenizer struct {
	splitter   *pretoken.Splitter
	vocabulary *vocab.Vocabulary
	unkID      uint32
}

// New constructs a Tokenizer over vocabulary using pattern to split input
// text into words before per-word segmentation. unkID is returned for any
// word segment has no representable subword path.
func New(pattern string, vocabulary *vocab.Vocabulary, unkID uint32) (*Tokenizer, error) {
	splitter, err := pretoken.New(pattern)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{splitter: splitter, vocabulary: vocabulary, unkID: unkID}, nil
}

// Encode splits text into words and segments each word independently: a
// word that cannot be fully covered by vocabulary entries contributes a
// single unkID instead of a partial match, per standard WordPiece
// behavior. Pre-tokens made only of whitespace produce no ids.
func (t *Tokenizer) Encode(text string) ([]uint32, error) {
	words, err := t.splitter.Split(text)
	if err != nil {
		return nil, err
	}

	var out []uint32
	for _, w := range words {
		if strings.TrimSpace(w) == "" {
			continue
		}
		out = append(out, t.segmentWord(w)...)
	}
	return out, nil
}

// segmentWord runs greedy longest-match over a single word: repeatedly
// take the longest prefix of the remaining bytes that names a vocabulary
// entry (continuation entries "##xyz" only apply after the first
// subword), advance past it, and repeat. If any position has no match at
// all, the whole word becomes a single unkID rather than a partial
// segmentation.
func (t *Tokenizer) segmentWord(word string) []uint32 {
	if word == "" {
		return nil
	}

	raw := []byte(word)
	var ids []uint32
	start := 0
	for start < len(raw) {
		end := len(raw)
		var matchID uint32
		matched := false

		for end > start {
			candidate := string(raw[start:end])
			if start > 0 {
				candidate = ContinuationPrefix + candidate
			}
			if id, ok := t.vocabulary.GetByToken([]byte(candidate)); ok {
				matchID = id
				matched = true
				break
			}
			end--
		}

		if !matched {
			return []uint32{t.unkID}
		}
		ids = append(ids, matchID)
		start = end
	}
	return ids
}

// Decode reconstructs text from ids, stripping the "##" continuation
// marker and concatenating directly onto the previous token; a plain
// (non-continuation) token after the first is preceded by a space.
func (t *Tokenizer) Decode(ids []uint32) (string, error) {
	var buf strings.Builder
	for i, id := range ids {
		tok, ok := t.vocabulary.GetByID(id)
		if !ok {
			return "", errUnknownID(id)
		}
		s := string(tok)
		if cont := strings.TrimPrefix(s, ContinuationPrefix); cont != s {
			buf.WriteString(cont)
			continue
		}
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(s)
	}
	return buf.String(), nil
}
