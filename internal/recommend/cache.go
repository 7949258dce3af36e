package recommend

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/hireloop/hireloop-api/internal/llm"
)

// EmbeddingCache deduplicates embedding calls within one regeneration batch,
// keyed by content hash. It is not shared across batches.
type EmbeddingCache struct {
	mu      sync.Mutex
	vectors map[[32]byte][]float32
}

// NewEmbeddingCache creates an empty cache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{vectors: make(map[[32]byte][]float32)}
}

// Get returns the embedding for text, calling the embedder only on a miss.
func (c *EmbeddingCache) Get(ctx context.Context, embedder llm.Embedder, text string) ([]float32, error) {
	key := sha256.Sum256([]byte(text))

	c.mu.Lock()
	vec, ok := c.vectors[key]
	c.mu.Unlock()
	if ok {
		return vec, nil
	}

	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.vectors[key] = vec
	c.mu.Unlock()
	return vec, nil
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vectors)
}
