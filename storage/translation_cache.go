package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/colorfulnotion/a64jit/a64/ir"
	"github.com/colorfulnotion/a64jit/log"
	"github.com/colorfulnotion/a64jit/xlaterrors"
)

var translationPrefix = []byte("tb/")

// TranslationCache stores encoded IR blocks keyed by guest address and the
// instruction words they were translated from.
type TranslationCache struct {
	store  *PersistenceStore
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewTranslationCache opens a cache at path, or an in-memory one when path is empty.
func NewTranslationCache(path string) (*TranslationCache, error) {
	store, err := NewPersistenceStore(path)
	if err != nil {
		return nil, err
	}
	return &TranslationCache{store: store}, nil
}

func pcPrefix(pc uint64) []byte {
	key := make([]byte, 0, len(translationPrefix)+8)
	key = append(key, translationPrefix...)
	return binary.BigEndian.AppendUint64(key, pc)
}

func translationKey(pc uint64, words []uint32) []byte {
	key := pcPrefix(pc)
	for _, w := range words {
		key = binary.BigEndian.AppendUint32(key, w)
	}
	return key
}

// Get returns the cached block for words at pc. A corrupt entry is dropped
// and reported as a miss.
func (c *TranslationCache) Get(pc uint64, words []uint32) (*ir.Block, bool, error) {
	key := translationKey(pc, words)
	data, found, err := c.store.Get(key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		c.misses.Add(1)
		return nil, false, nil
	}
	block, err := ir.Decode(data)
	if errors.Is(err, xlaterrors.ErrCorruptBlock) {
		log.Warn(log.CacheModule, "dropping corrupt translation", "pc", fmt.Sprintf("%#x", pc), "err", err)
		c.misses.Add(1)
		return nil, false, c.store.Delete(key)
	}
	if err != nil {
		return nil, false, err
	}
	c.hits.Add(1)
	return block, true, nil
}

// Put stores block as the translation of words at pc.
func (c *TranslationCache) Put(pc uint64, words []uint32, block *ir.Block) error {
	if err := c.store.Put(translationKey(pc, words), ir.Encode(block)); err != nil {
		return fmt.Errorf("cache put %#x: %w", pc, err)
	}
	log.Trace(log.CacheModule, "cached translation", "pc", fmt.Sprintf("%#x", pc), "insts", block.Len())
	return nil
}

// Invalidate drops every translation starting at pc.
func (c *TranslationCache) Invalidate(pc uint64) (int, error) {
	n, err := c.store.DeleteWithPrefix(pcPrefix(pc))
	if err != nil {
		return 0, err
	}
	log.Debug(log.CacheModule, "invalidated", "pc", fmt.Sprintf("%#x", pc), "entries", n)
	return n, nil
}

// Len returns the number of cached translations.
func (c *TranslationCache) Len() (int, error) {
	entries, err := c.store.GetWithPrefix(translationPrefix)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Stats returns the lookup hit and miss counts since the cache was opened.
func (c *TranslationCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *TranslationCache) Close() error {
	return c.store.Close()
}
