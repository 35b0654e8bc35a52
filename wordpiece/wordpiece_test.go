package wordpiece

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/subword/internal/vocab"
)

func buildVocab(entries map[string]uint32) *vocab.Vocabulary {
	v := vocab.New()
	for tok, id := range entries {
		v.Insert(id, []byte(tok))
	}
	return v
}

func TestSegmentWordExactMatch(t *testing.T) {
	v := buildVocab(map[string]uint32{"hello": 1})
	tok, err := New("\\S+|\\s+", v, 0)
	require.NoError(t, err)

	ids, err := tok.Encode("hello")
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, ids)
}

func TestSegmentWordWithContinuation(t *testing.T) {
	v := buildVocab(map[string]uint32{
		"un":    1,
		"##aff": 2,
		"##able": 3,
	})
	tok, err := New("\\S+|\\s+", v, 0)
	require.NoError(t, err)

	ids, err := tok.Encode("unaffable")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2, 3}, ids)
}

func TestSegmentWordPrefersLongestMatch(t *testing.T) {
	v := buildVocab(map[string]uint32{
		"un":   1,
		"unaf": 2,
		"##fable": 3,
		"##able":  4,
	})
	tok, err := New("\\S+|\\s+", v, 0)
	require.NoError(t, err)

	ids, err := tok.Encode("unaffable")
	require.NoError(t, err)
	require.Equal(t, []uint32{2, 3}, ids)
}

func TestSegmentWordUnknownFallsBackToUNK(t *testing.T) {
	v := buildVocab(map[string]uint32{"hi": 1})
	tok, err := New("\\S+|\\s+", v, 99)
	require.NoError(t, err)

	ids, err := tok.Encode("zzz")
	require.NoError(t, err)
	require.Equal(t, []uint32{99}, ids)
}

func TestSegmentWordPartialCoverageFallsBackWhole(t *testing.T) {
	// "un" matches but nothing covers the remainder "zzz" even as a
	// continuation, so the whole word becomes UNK rather than "un"+UNK.
	v := buildVocab(map[string]uint32{"un": 1})
	tok, err := New("\\S+|\\s+", v, 99)
	require.NoError(t, err)

	ids, err := tok.Encode("unzzz")
	require.NoError(t, err)
	require.Equal(t, []uint32{99}, ids)
}

func TestEncodeMultipleWords(t *testing.T) {
	v := buildVocab(map[string]uint32{"a": 1, "b": 2})
	tok, err := New("\\S+|\\s+", v, 0)
	require.NoError(t, err)

	ids, err := tok.Encode("a b")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, ids)
}

func TestDecodeRejoinsContinuations(t *testing.T) {
	v := buildVocab(map[string]uint32{"un": 1, "##aff": 2, "##able": 3, "ok": 4})
	tok, err := New("\\S+|\\s+", v, 0)
	require.NoError(t, err)

	text, err := tok.Decode([]uint32{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, "unaffable ok", text)
}

func TestDecodeUnknownID(t *testing.T) {
	v := buildVocab(map[string]uint32{"a": 1})
	tok, err := New("\\S+|\\s+", v, 0)
	require.NoError(t, err)

	_, err = tok.Decode([]uint32{404})
	require.Error(t, err)
}
