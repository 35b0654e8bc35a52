package bpe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/subword/internal/vocab"
)

func TestSeedBBPESeedsAllBytes(t *testing.T) {
	v := vocab.New()
	seedBBPE(v)
	require.Equal(t, 256, v.Len())
	for b := 0; b < 256; b++ {
		tok, ok := v.GetByID(uint32(b))
		require.True(t, ok)
		require.Equal(t, []byte{byte(b)}, tok)
	}
}

func TestSeedBaseTokensAppendsAfterExisting(t *testing.T) {
	v := vocab.New()
	seedBBPE(v)
	seedBaseTokens(v, []string{"hello", "world"})
	require.Equal(t, 258, v.Len())

	id, ok := v.GetByToken([]byte("hello"))
	require.True(t, ok)
	require.Equal(t, uint32(256), id)

	id, ok = v.GetByToken([]byte("world"))
	require.True(t, ok)
	require.Equal(t, uint32(257), id)
}

func TestSeedBaseTokensSkipsDuplicates(t *testing.T) {
	v := vocab.New()
	v.Insert(0, []byte("dup"))
	seedBaseTokens(v, []string{"dup", "new"})
	require.Equal(t, 2, v.Len())

	id, ok := v.GetByToken([]byte("dup"))
	require.True(t, ok)
	require.Equal(t, uint32(0), id)

	id, ok = v.GetByToken([]byte("new"))
	require.True(t, ok)
	require.Equal(t, uint32(1), id)
}

func TestIsValidUTF8(t *testing.T) {
	require.True(t, isValidUTF8("hello"))
	require.True(t, isValidUTF8(""))
	require.False(t, isValidUTF8(string([]byte{0xff, 0xfe})))
}
