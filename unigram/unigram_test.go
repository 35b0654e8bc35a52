package unigram

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

func TestSegmentPrefersHigherTotalLogProb(t *testing.T) {
	// "ab" can segment as ["a","b"] (sum -2.0) or ["ab"] (-0.5); Viterbi
	// must prefer the single-piece path.
	v := buildVocab(map[string]uint32{"a": 1, "b": 2, "ab": 3})
	logProbs := map[uint32]float64{1: -1.0, 2: -1.0, 3: -0.5}

	tok, err := New("\\S+|\\s+", v, logProbs, 0, -10)
	require.NoError(t, err)

	ids, err := tok.Encode("ab")
	require.NoError(t, err)
	require.Equal(t, []uint32{3}, ids)
}

func TestSegmentFallsBackToWorseSumWhenForced(t *testing.T) {
	// No single "ab" entry this time, so the only path is "a"+"b".
	v := buildVocab(map[string]uint32{"a": 1, "b": 2})
	logProbs := map[uint32]float64{1: -1.0, 2: -1.0}

	tok, err := New("\\S+|\\s+", v, logProbs, 0, -10)
	require.NoError(t, err)

	ids, err := tok.Encode("ab")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, ids)
}

func TestSegmentUsesUnkForUncoveredByte(t *testing.T) {
	v := buildVocab(map[string]uint32{"a": 1})
	logProbs := map[uint32]float64{1: -1.0}

	tok, err := New("\\S+|\\s+", v, logProbs, 99, -5)
	require.NoError(t, err)

	ids, err := tok.Encode("az")
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 99}, ids)
}

func TestSegmentEmptyPretoken(t *testing.T) {
	v := buildVocab(map[string]uint32{"a": 1})
	tok, err := New("\\S+|\\s+", v, map[uint32]float64{1: -1.0}, 0, -10)
	require.NoError(t, err)

	ids, err := tok.Encode("")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestDecodeConcatenatesTokens(t *testing.T) {
	v := buildVocab(map[string]uint32{"ab": 3})
	tok, err := New("\\S+|\\s+", v, map[uint32]float64{3: -0.5}, 0, -10)
	require.NoError(t, err)

	text, err := tok.Decode([]uint32{3})
	require.NoError(t, err)
	require.Equal(t, "ab", text)
}

func TestDecodeUnknownIDErrors(t *testing.T) {
	v := buildVocab(map[string]uint32{"a": 1})
	tok, err := New("\\S+|\\s+", v, map[uint32]float64{1: -1.0}, 0, -10)
	require.NoError(t, err)

	_, err = tok.Decode([]uint32{42})
	require.Error(t, err)
}

func TestNegInfIsUnreachableWithoutLogProb(t *testing.T) {
	// A vocab entry present but missing from logProbs must never be
	// chosen; without any scored single-byte coverage, unk applies.
	v := buildVocab(map[string]uint32{"a": 1})
	tok, err := New("\\S+|\\s+", v, map[uint32]float64{}, 7, -3)
	require.NoError(t, err)

	ids, err := tok.Encode("a")
	require.NoError(t, err)
	require.Equal(t, []uint32{7}, ids)
}
