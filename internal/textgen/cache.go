package textgen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache stores generated text by prompt key.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string)
}

// PromptKey hashes the whole prompt so prompts sharing a prefix never collide.
func PromptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

type NoopCache struct{}

func (NoopCache) Get(string) (string, bool) {
	return "", false
}

func (NoopCache) Set(string, string) {}

// RistrettoCache bounds memory by entry count and expires entries after ttl.
type RistrettoCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewRistrettoCache(maxEntries int64, ttl time.Duration) (*RistrettoCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", maxEntries)
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &RistrettoCache{cache: cache, ttl: ttl}, nil
}

func (cache *RistrettoCache) Get(key string) (string, bool) {
	value, ok := cache.cache.Get(key)
	if !ok {
		return "", false
	}
	text, ok := value.(string)
	return text, ok
}

// Set admits the entry with unit cost. Ristretto applies writes
// asynchronously, so Wait is called to make the entry visible to the next Get.
func (cache *RistrettoCache) Set(key string, value string) {
	if cache.ttl > 0 {
		cache.cache.SetWithTTL(key, value, 1, cache.ttl)
	} else {
		cache.cache.Set(key, value, 1)
	}
	cache.cache.Wait()
}

func (cache *RistrettoCache) Close() {
	cache.cache.Close()
}
