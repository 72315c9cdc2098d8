package domain

import (
	"context"
	"fmt"
)

// EmbedderSource identifies which embedder produced a vector. Vectors from
// different sources are not comparable and must not share an index.
type EmbedderSource string

const (
	// SourceProvider marks vectors from the external embedding service.
	SourceProvider EmbedderSource = "provider"
	// SourceLocal marks vectors from the deterministic local fallback.
	SourceLocal EmbedderSource = "local"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and its origin through the decorator chain.
type EmbeddingResult struct {
	Embedding []float32
	Source    EmbedderSource
}

// BatchEmbeddingResult carries multiple embedding vectors, order-preserving.
type BatchEmbeddingResult struct {
	Embeddings [][]float32
	Source     EmbedderSource
}

// BatchFallback вызывает Embed по одному для каждого текста. Safety net для
// провайдеров без нативного batch.
func BatchFallback(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	embeddings := make([][]float32, len(texts))
	source := SourceProvider

	for i, text := range texts {
		res, err := e.Embed(ctx, text)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("fallback embed [%d]: %w", i, err)
		}
		embeddings[i] = res.Embedding
		source = res.Source
	}

	return BatchEmbeddingResult{Embeddings: embeddings, Source: source}, nil
}
