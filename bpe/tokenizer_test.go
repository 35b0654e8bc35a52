package bpe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	tok, err := New()
	require.NoError(t, err)
	require.Equal(t, BBPE, tok.Variant())
	require.NotEmpty(t, tok.Pattern())
}

func TestNewRejectsEmptyPattern(t *testing.T) {
	_, err := New(WithPattern(""))
	require.Error(t, err)
	var bpeErr *Error
	require.ErrorAs(t, err, &bpeErr)
	require.Equal(t, InputValidation, bpeErr.Kind)
}

func TestNewRejectsInvalidRegex(t *testing.T) {
	_, err := New(WithPattern("("))
	require.Error(t, err)
	var bpeErr *Error
	require.ErrorAs(t, err, &bpeErr)
	require.Equal(t, InvalidRegex, bpeErr.Kind)
}

func TestNewRejectsNegativeCacheSize(t *testing.T) {
	_, err := New(WithCacheSize(-1))
	require.Error(t, err)
	var bpeErr *Error
	require.ErrorAs(t, err, &bpeErr)
	require.Equal(t, InputValidation, bpeErr.Kind)
}

func TestGetVocabReturnsIndependentCopy(t *testing.T) {
	tok := trainedTokenizer(t)
	v := tok.GetVocab()
	v[97] = []byte("mutated")

	again := tok.GetVocab()
	require.Equal(t, []byte{'a'}, again[97])
}

func TestGetMergeableRanksMatchesLearnOrder(t *testing.T) {
	tok := trainedTokenizer(t)
	ranks := tok.GetMergeableRanks()
	require.Len(t, ranks, 1)

	merges := tok.GetMerges()
	require.Equal(t, merges[0].NewID, ranks[merges[0].Pair])
}

func TestEncodeBatchDecodeBatch(t *testing.T) {
	tok := trainedTokenizer(t)

	idsList, err := tok.EncodeBatch([]string{"aaabdaaabac", "aaabdaaabac"})
	require.NoError(t, err)
	require.Len(t, idsList, 2)
	require.Equal(t, idsList[0], idsList[1])

	texts, err := tok.DecodeBatch(idsList)
	require.NoError(t, err)
	require.Equal(t, []string{"aaabdaaabac", "aaabdaaabac"}, texts)
}

func TestDecodeUnknownIDFails(t *testing.T) {
	tok := trainedTokenizer(t)
	_, err := tok.Decode([]uint32{999999})
	require.Error(t, err)
	var bpeErr *Error
	require.ErrorAs(t, err, &bpeErr)
	require.Equal(t, Decoding, bpeErr.Kind)
}

func TestGreedyAndRankPriorityProduceDecodableResults(t *testing.T) {
	ctx := context.Background()

	greedy, err := New(WithPattern(".+"), WithVariant(BBPE), WithMergeStrategy(Greedy))
	require.NoError(t, err)
	require.NoError(t, greedy.Train(ctx, []string{"aaabdaaabac"}, 260))

	ranked, err := New(WithPattern(".+"), WithVariant(BBPE), WithMergeStrategy(RankPriority))
	require.NoError(t, err)
	require.NoError(t, ranked.Train(ctx, []string{"aaabdaaabac"}, 260))

	for _, tok := range []*Tokenizer{greedy, ranked} {
		ids, err := tok.Encode("aaabdaaabac")
		require.NoError(t, err)
		text, err := tok.Decode(ids)
		require.NoError(t, err)
		require.Equal(t, "aaabdaaabac", text)
	}
}

func TestEncodeCacheHitReturnsSameResult(t *testing.T) {
	tok, err := New(WithPattern("\\S+|\\s+"), WithVariant(BBPE), WithCacheSize(8))
	require.NoError(t, err)
	require.NoError(t, tok.Train(context.Background(), []string{"aaa bbb aaa"}, 256))

	first, err := tok.Encode("aaa")
	require.NoError(t, err)
	second, err := tok.Encode("aaa")
	require.NoError(t, err)
	require.Equal(t, first, second)
}
