package ingest

import (
	"context"

	"github.com/kailas-cloud/blograg/internal/domain"
	"github.com/kailas-cloud/blograg/internal/domain/document"
	"github.com/kailas-cloud/blograg/internal/repository/vectorindex"
)

// Store is the authoritative document persistence contract.
type Store interface {
	Create(ctx context.Context, doc document.Document) error
	Get(ctx context.Context, id string) (document.Document, error)
	Update(ctx context.Context, doc document.Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]document.Document, error)
}

// Index is the derived similarity-index contract owned by the ingest pipeline.
type Index interface {
	Upsert(ctx context.Context, id string, vector []float32, source domain.EmbedderSource, meta vectorindex.Metadata) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Embedder vectorizes chunk texts, order-preserving.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
