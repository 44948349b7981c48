package storage

import (
	"testing"

	"github.com/colorfulnotion/a64jit/a64/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBlock(pc uint64) *ir.Block {
	b := ir.NewBuilder(pc)
	n := b.GetQ(1)
	elem := b.VectorGetElement(32, b.GetQ(2), 3)
	b.SetQ(0, b.VectorMultiply(32, n, b.VectorBroadcast(32, elem)))
	return b.Block
}

func TestTranslationCacheRoundTrip(t *testing.T) {
	c, err := NewTranslationCache("")
	require.NoError(t, err)
	defer c.Close()

	words := []uint32{0x4fa28020}
	_, found, err := c.Get(0x1000, words)
	require.NoError(t, err)
	assert.False(t, found)

	block := sampleBlock(0x1000)
	require.NoError(t, c.Put(0x1000, words, block))

	got, found, err := c.Get(0x1000, words)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, block.String(), got.String())

	// Same words at another address are a different translation.
	_, found, err = c.Get(0x2000, words)
	require.NoError(t, err)
	assert.False(t, found)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
}

func TestTranslationCachePersists(t *testing.T) {
	dir := t.TempDir()
	words := []uint32{0x6f8ae020, 0x4f40c041}

	c, err := NewTranslationCache(dir)
	require.NoError(t, err)
	require.NoError(t, c.Put(0x40, words, sampleBlock(0x40)))
	require.NoError(t, c.Close())

	c, err = NewTranslationCache(dir)
	require.NoError(t, err)
	defer c.Close()
	got, found, err := c.Get(0x40, words)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(0x40), got.Location)
}

func TestTranslationCacheInvalidate(t *testing.T) {
	c, err := NewTranslationCache("")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Put(0x10, []uint32{1}, sampleBlock(0x10)))
	require.NoError(t, c.Put(0x10, []uint32{1, 2}, sampleBlock(0x10)))
	require.NoError(t, c.Put(0x14, []uint32{2}, sampleBlock(0x14)))

	n, err := c.Invalidate(0x10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestTranslationCacheDropsCorruptEntry(t *testing.T) {
	c, err := NewTranslationCache("")
	require.NoError(t, err)
	defer c.Close()

	words := []uint32{7}
	require.NoError(t, c.store.Put(translationKey(0x20, words), []byte{0xff, 0xff}))

	_, found, err := c.Get(0x20, words)
	require.NoError(t, err)
	assert.False(t, found)

	total, err := c.Len()
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTranslationCacheDropsInvalidBlock(t *testing.T) {
	c, err := NewTranslationCache("")
	require.NoError(t, err)
	defer c.Close()

	b := ir.NewBuilder(0x20)
	q := b.GetQ(1)
	b.SetQ(0, b.VectorAdd(32, q, q))
	b.Block.Insts[1].Esize = 0
	words := []uint32{0x4f828020}
	require.NoError(t, c.Put(0x20, words, b.Block))

	_, found, err := c.Get(0x20, words)
	require.NoError(t, err)
	assert.False(t, found)
	total, err := c.Len()
	require.NoError(t, err)
	assert.Zero(t, total)
	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Equal(t, uint64(1), misses)
}
