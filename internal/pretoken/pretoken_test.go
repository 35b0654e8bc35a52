package pretoken

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitDefaultPatternBasic(t *testing.T) {
	s, err := New(DefaultPattern)
	require.NoError(t, err)

	toks, err := s.Split("Hello, world! 123")
	require.NoError(t, err)
	// Digit runs have no leading-space alternative in the pattern, unlike
	// the punctuation clause, so the space before "123" splits out on its
	// own.
	require.Equal(t, []string{"Hello", ",", " world", "!", " ", "123"}, toks)
}

func TestSplitDefaultPatternContractions(t *testing.T) {
	s, err := New(DefaultPattern)
	require.NoError(t, err)

	toks, err := s.Split("don't")
	require.NoError(t, err)
	require.Equal(t, []string{"don", "'t"}, toks)
}

func TestSplitDefaultPatternWhitespaceLookahead(t *testing.T) {
	s, err := New(DefaultPattern)
	require.NoError(t, err)

	// Trailing run of spaces before a word keeps one space attached to
	// the word and emits the rest as a standalone run.
	toks, err := s.Split("a   b")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "  ", " b"}, toks)
}

func TestSplitEmptyString(t *testing.T) {
	s, err := New(DefaultPattern)
	require.NoError(t, err)
	toks, err := s.Split("")
	require.NoError(t, err)
	require.Nil(t, toks)
}

func TestSplitNumberRunsCapAtThree(t *testing.T) {
	s, err := New(DefaultPattern)
	require.NoError(t, err)
	toks, err := s.Split("123456")
	require.NoError(t, err)
	require.Equal(t, []string{"123", "456"}, toks)
}

func TestSplitNewlineRun(t *testing.T) {
	s, err := New(DefaultPattern)
	require.NoError(t, err)
	// The newline clause (\s*[\r\n]) is greedy: it takes the whitespace
	// run up to its last newline, so a run of two is one token, not two.
	toks, err := s.Split("a\n\nb")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "\n\n", "b"}, toks)
}

func TestSplitCustomPatternUsesGeneralEngine(t *testing.T) {
	s, err := New(`\w+`)
	require.NoError(t, err)
	require.False(t, s.isFast)

	toks, err := s.Split("foo bar baz")
	require.NoError(t, err)
	require.Equal(t, []string{"foo", "bar", "baz"}, toks)
}

func TestSplitCustomPatternFallsBackToWhitespaceOnNoMatch(t *testing.T) {
	// `\d+` never matches this input, but it is non-empty, so spec.md
	// §4.5 requires falling back to whitespace-splitting rather than
	// returning no pre-tokens at all.
	s, err := New(`\d+`)
	require.NoError(t, err)

	toks, err := s.Split("hello world  foo")
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "world", "foo"}, toks)
}

func TestCompileInvalidPattern(t *testing.T) {
	_, err := New(`(unterminated`)
	require.Error(t, err)
}

func TestFastPathMatchesGeneralEngine(t *testing.T) {
	fast, err := New(DefaultPattern)
	require.NoError(t, err)

	samples := []string{
		"",
		"The quick brown fox-jumps, over 42 lazy dogs!!\n\nNext line.",
		"I'll've seen it.",
		"   leading spaces",
		"unicode: héllo wörld ☺",
	}
	for _, sample := range samples {
		got, err := fast.Split(sample)
		require.NoError(t, err)

		general := &Splitter{pattern: fast.pattern, re: fast.re, isFast: false}
		want, err := general.Split(sample)
		require.NoError(t, err)

		require.Equal(t, want, got, "sample=%q", sample)
	}
}
