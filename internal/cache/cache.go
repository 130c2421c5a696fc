// Package cache holds AI report readings keyed by content digest. Staging
// results are never cached; resolvers are cheap and pure.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrInvalidSize is returned when a memory cache is created with no capacity.
var ErrInvalidSize = errors.New("cache size must be positive")

// Cache stores opaque values with a fixed lifetime.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	Entries int           `json:"entries"`
	TTL     time.Duration `json:"ttl"`
}

// Key derives a cache key from its parts. Parts are length-prefixed before
// hashing so ("ab","c") and ("a","bc") differ.
func Key(namespace string, parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		var n [8]byte
		l := uint64(len(p))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write(p)
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}
