package embedding

import (
	"hash/fnv"
	"math"
	"strings"
)

// LocalEmbedder is the deterministic fallback used when the external
// embedding provider is unreachable. Same text always yields a bit-identical
// vector. The vectors are dimension-compatible with the provider's but live
// in an unrelated space — never compare the two.
type LocalEmbedder struct {
	dim int
}

// NewLocalEmbedder creates a fallback embedder with the given dimension.
func NewLocalEmbedder(dim int) *LocalEmbedder {
	return &LocalEmbedder{dim: dim}
}

// Dimensions returns the vector dimension.
func (e *LocalEmbedder) Dimensions() int { return e.dim }

// Embed hashes each word into a vector slot with diminishing positional
// weight 1/(i+1), then L2-normalizes. A zero-norm vector is returned as-is.
func (e *LocalEmbedder) Embed(text string) []float32 {
	vec := make([]float32, e.dim)
	words := strings.Fields(strings.ToLower(text))
	if len(words) > e.dim {
		words = words[:e.dim]
	}

	for i, word := range words {
		slot := hashWord(word) % uint32(e.dim)
		vec[slot] += float32(1.0 / float64(i+1))
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func hashWord(word string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return h.Sum32()
}
