package bpe

import (
	"unicode/utf8"

	"github.com/agentstation/subword/internal/vocab"
)

// seedBBPE inserts ids 0-255 as raw single-byte tokens, the fixed base
// vocabulary every byte-level BPE tokenizer starts from.
func seedBBPE(v *vocab.Vocabulary) {
	for b := 0; b < 256; b++ {
		v.Insert(uint32(b), []byte{byte(b)})
	}
}

// seedBaseTokens inserts additional caller-supplied tokens starting at the
// current end of the vocabulary, skipping any token already present.
func seedBaseTokens(v *vocab.Vocabulary, tokens []string) {
	nextID := uint32(v.Len())
	for _, tok := range tokens {
		if _, ok := v.GetByToken([]byte(tok)); ok {
			continue
		}
		v.Insert(nextID, []byte(tok))
		nextID++
	}
}

// isValidUTF8 reports whether s is valid UTF-8 with no substitutions
// needed, used to reject a BBPE decode whose concatenated bytes don't form
// well-formed text rather than silently returning replacement characters.
func isValidUTF8(s string) bool {
	return utf8.ValidString(s)
}
