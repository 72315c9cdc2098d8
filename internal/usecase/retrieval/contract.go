package retrieval

import (
	"context"

	"github.com/kailas-cloud/blograg/internal/domain"
	"github.com/kailas-cloud/blograg/internal/repository/vectorindex"
)

// Index is the read-only similarity index contract. The router never
// mutates the index.
type Index interface {
	Query(ctx context.Context, vector []float32, source domain.EmbedderSource, k int) ([]vectorindex.Hit, error)
}

// Embedder vectorizes query text. The embedding gateway guarantees a vector
// for any valid text, so the router never sees provider failures.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
