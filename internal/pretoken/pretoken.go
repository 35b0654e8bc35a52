// Package pretoken splits raw input text into pre-tokens ahead of
// byte/character id-ification. Splitting happens once before training
// starts and once per Encode call; it never runs during the merge loop
// itself.
package pretoken

import (
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

// DefaultPattern is the GPT-4-style pre-tokenizer regex: contractions,
// letter runs with an optional leading non-letter/non-number, 1-3 digit
// runs, punctuation runs with an optional leading space, a whitespace run
// ending in a newline character, and trailing
// whitespace not followed by a non-space character.
const DefaultPattern = `'(?i:[sdmt]|ll|ve|re)|[^\r\n\p{L}\p{N}]?+\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]++[\r\n]*|\s*[\r\n]|\s+(?!\S)|\s+`

// Splitter divides text into pre-tokens according to a pattern.
//
// The zero value is not usable; construct one with New.
type Splitter struct {
	pattern string
	re      *regexp2.Regexp
	isFast  bool
}

// New compiles pattern into a Splitter. When pattern equals DefaultPattern,
// Split uses a pooled hand-rolled scanner instead of the general regexp2
// engine, since that is the pattern nearly every caller trains with.
func New(pattern string) (*Splitter, error) {
	re, err := regexp2.Compile(pattern, 0)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = 0
	return &Splitter{
		pattern: pattern,
		re:      re,
		isFast:  pattern == DefaultPattern,
	}, nil
}

// Pattern returns the pattern the Splitter was constructed with.
func (s *Splitter) Pattern() string { return s.pattern }

// Split returns the ordered list of pre-tokens found in text.
func (s *Splitter) Split(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	if s.isFast {
		return fastDefaultSplit(text), nil
	}
	return s.splitGeneral(text)
}

func (s *Splitter) splitGeneral(text string) ([]string, error) {
	var out []string
	m, err := s.re.FindStringMatch(text)
	for m != nil {
		if err != nil {
			return nil, err
		}
		out = append(out, m.String())
		m, err = s.re.FindNextMatch(m)
	}
	if err != nil {
		return nil, err
	}
	// Per spec.md §4.5: a pattern producing no match on non-empty input
	// falls back to whitespace-splitting rather than yielding no
	// pre-tokens at all.
	if len(out) == 0 {
		out = strings.Fields(text)
	}
	return out, nil
}

// fastScanner is a pooled hand-rolled scanner implementing DefaultPattern
// without going through the general regexp2 engine. It tries the same
// alternatives in the same order the regex alternation would.
type fastScanner struct {
	input    []rune
	position int
	tokens   []string
}

var fastScannerPool = &sync.Pool{
	New: func() interface{} {
		return &fastScanner{tokens: make([]string, 0, 32)}
	},
}

func fastDefaultSplit(text string) []string {
	sc := fastScannerPool.Get().(*fastScanner)
	sc.input = []rune(text)
	sc.position = 0
	sc.tokens = sc.tokens[:0]

	for sc.position < len(sc.input) {
		sc.matchNext()
	}

	result := make([]string, len(sc.tokens))
	copy(result, sc.tokens)

	sc.input = nil
	fastScannerPool.Put(sc)
	return result
}

var contractionSuffixes = []string{"'s", "'t", "'re", "'ve", "'m", "'ll", "'d"}

func (sc *fastScanner) matchNext() {
	if tok := sc.tryContraction(); tok != "" {
		sc.tokens = append(sc.tokens, tok)
		return
	}
	if tok := sc.tryWordWithPrefix(); tok != "" {
		sc.tokens = append(sc.tokens, tok)
		return
	}
	if tok := sc.tryNumber(); tok != "" {
		sc.tokens = append(sc.tokens, tok)
		return
	}
	if tok := sc.tryPunctuationWithSpace(); tok != "" {
		sc.tokens = append(sc.tokens, tok)
		return
	}
	if tok := sc.tryNewline(); tok != "" {
		sc.tokens = append(sc.tokens, tok)
		return
	}
	if tok := sc.tryWhitespace(); tok != "" {
		sc.tokens = append(sc.tokens, tok)
		return
	}
	sc.tokens = append(sc.tokens, string(sc.input[sc.position]))
	sc.position++
}

func (sc *fastScanner) tryContraction() string {
	if sc.position >= len(sc.input) || sc.input[sc.position] != '\'' {
		return ""
	}
	for _, suf := range contractionSuffixes {
		if sc.matchesFoldedAt(suf) {
			end := sc.position + len([]rune(suf))
			tok := string(sc.input[sc.position:end])
			sc.position = end
			return tok
		}
	}
	return ""
}

func (sc *fastScanner) tryWordWithPrefix() string {
	start := sc.position
	if sc.position < len(sc.input) {
		ch := sc.input[sc.position]
		if !isLetter(ch) && !isNumber(ch) && ch != '\r' && ch != '\n' {
			sc.position++
		}
	}
	if sc.position >= len(sc.input) || !isLetter(sc.input[sc.position]) {
		sc.position = start
		return ""
	}
	for sc.position < len(sc.input) && isLetter(sc.input[sc.position]) {
		sc.position++
	}
	return string(sc.input[start:sc.position])
}

func (sc *fastScanner) tryNumber() string {
	if sc.position >= len(sc.input) || !isNumber(sc.input[sc.position]) {
		return ""
	}
	start := sc.position
	for n := 0; sc.position < len(sc.input) && isNumber(sc.input[sc.position]) && n < 3; n++ {
		sc.position++
	}
	return string(sc.input[start:sc.position])
}

func (sc *fastScanner) tryPunctuationWithSpace() string {
	start := sc.position
	if sc.position < len(sc.input) && sc.input[sc.position] == ' ' {
		sc.position++
	}
	if sc.position >= len(sc.input) ||
		isWhitespace(sc.input[sc.position]) ||
		isLetter(sc.input[sc.position]) ||
		isNumber(sc.input[sc.position]) {
		sc.position = start
		return ""
	}
	for sc.position < len(sc.input) {
		ch := sc.input[sc.position]
		if isWhitespace(ch) || isLetter(ch) || isNumber(ch) {
			break
		}
		sc.position++
	}
	for sc.position < len(sc.input) && (sc.input[sc.position] == '\r' || sc.input[sc.position] == '\n') {
		sc.position++
	}
	if sc.position == start {
		return ""
	}
	return string(sc.input[start:sc.position])
}

// tryNewline matches \s*[\r\n]: since \s* is greedy, the match is the
// whitespace run starting here up to and including the last \r or \n in
// that run, so a run of newlines is a single match.
func (sc *fastScanner) tryNewline() string {
	start := sc.position
	end := start
	for sc.position < len(sc.input) && isWhitespace(sc.input[sc.position]) {
		if sc.input[sc.position] == '\r' || sc.input[sc.position] == '\n' {
			end = sc.position + 1
		}
		sc.position++
	}
	sc.position = end
	if end == start {
		return ""
	}
	return string(sc.input[start:sc.position])
}

func (sc *fastScanner) tryWhitespace() string {
	if sc.position >= len(sc.input) || !isWhitespace(sc.input[sc.position]) {
		return ""
	}
	start := sc.position
	for sc.position < len(sc.input) && isWhitespace(sc.input[sc.position]) {
		sc.position++
	}
	if sc.position < len(sc.input) && !isWhitespace(sc.input[sc.position]) && sc.position > start+1 {
		sc.position--
	}
	return string(sc.input[start:sc.position])
}

func (sc *fastScanner) matchesFoldedAt(s string) bool {
	runes := []rune(s)
	if sc.position+len(runes) > len(sc.input) {
		return false
	}
	for i, r := range runes {
		if foldLower(sc.input[sc.position+i]) != foldLower(r) {
			return false
		}
	}
	return true
}
