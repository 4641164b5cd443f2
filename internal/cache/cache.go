// Package cache stores LLM results (embedding vectors, summaries) so
// repeated comparisons of the same definitions do not re-bill the provider.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-value cache with per-entry TTL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key for an LLM result. Provider and model are
// part of the key: the same text embeds differently under different models.
func Key(provider, model, text string) string {
	hash := sha256.Sum256([]byte(provider + "\x00" + model + "\x00" + text))
	return "fwcat:v1:" + hex.EncodeToString(hash[:])
}
