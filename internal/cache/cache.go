package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/covercheck/internal/model"
)

// keyPrefix versions the stored representation; bump it when the cached
// payload shape changes.
const keyPrefix = "covercheck:v2:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for a document's text as extracted by one
// provider and model. Switching either yields a different key.
func Key(provider, model, text string) string {
	h := sha256.New()
	for _, part := range []string{strings.ToLower(provider), model, text} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg. It returns nil when caching is
// disabled, a memory cache when no disk directory is set, and a memory
// layer over a disk layer otherwise.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}

	memory := NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	if cfg.DiskDir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(cfg.DiskDir, cfg.DiskTTL))
}
