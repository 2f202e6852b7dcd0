package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCapacity = 4096

// VectorCache holds document embeddings keyed by content hash. The LRU bound
// keeps memory flat when the corpus outgrows the hot set; evicted vectors are
// simply recomputed on the next retrieval.
type VectorCache struct {
	vectors *lru.Cache[string, []float32]
}

func NewVectorCache(capacity int) (*VectorCache, error) {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	vectors, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, fmt.Errorf("create vector cache: %w", err)
	}
	return &VectorCache{vectors: vectors}, nil
}

func (c *VectorCache) Get(key string) ([]float32, bool) {
	return c.vectors.Get(key)
}

func (c *VectorCache) Add(key string, vector []float32) {
	c.vectors.Add(key, vector)
}

func (c *VectorCache) Len() int {
	return c.vectors.Len()
}
