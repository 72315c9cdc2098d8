// Package embedding provides the gateway that turns text into vectors,
// degrading to a deterministic local embedder when the provider fails.
package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/domain"
	"github.com/kailas-cloud/blograg/internal/metrics"
)

// Gateway wraps an external embedder and guarantees that valid text always
// produces a vector: provider errors are absorbed into the local fallback,
// never propagated. Only empty input is an error.
type Gateway struct {
	provider domain.Embedder
	local    *LocalEmbedder
	logger   *zap.Logger
}

// NewGateway creates a gateway over the given provider. A nil provider means
// offline mode: every embed takes the local path.
func NewGateway(provider domain.Embedder, dim int, logger *zap.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		local:    NewLocalEmbedder(dim),
		logger:   logger,
	}
}

// Dimensions returns the declared vector dimension.
func (g *Gateway) Dimensions() int { return g.local.Dimensions() }

// Embed vectorizes a single text.
func (g *Gateway) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if text == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: empty text", domain.ErrInvalidInput)
	}

	if g.provider != nil {
		res, err := g.provider.Embed(ctx, text)
		if err == nil {
			res.Source = domain.SourceProvider
			return res, nil
		}
		g.degraded(err)
	}

	return domain.EmbeddingResult{
		Embedding: g.local.Embed(text),
		Source:    domain.SourceLocal,
	}, nil
}

// EmbedBatch vectorizes texts order-preserving, preferring one provider call
// over N. A provider failure degrades the whole batch to the local embedder
// so that all vectors of a batch come from one source.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{Source: domain.SourceProvider}, nil
	}
	for i, t := range texts {
		if t == "" {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: empty text at [%d]", domain.ErrInvalidInput, i)
		}
	}

	if g.provider != nil {
		res, err := g.batchFromProvider(ctx, texts)
		if err == nil {
			return res, nil
		}
		g.degraded(err)
	}

	embeddings := make([][]float32, len(texts))
	for i, t := range texts {
		embeddings[i] = g.local.Embed(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, Source: domain.SourceLocal}, nil
}

func (g *Gateway) batchFromProvider(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := g.provider.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		if len(res.Embeddings) != len(texts) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"%w: batch returned %d vectors for %d texts",
				domain.ErrEmbeddingProviderError, len(res.Embeddings), len(texts),
			)
		}
		res.Source = domain.SourceProvider
		return res, nil
	}
	res, err := domain.BatchFallback(ctx, g.provider, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	res.Source = domain.SourceProvider
	return res, nil
}

// degraded records the non-fatal fallback event. Деградация не ошибка — она
// не должна всплывать наверх как failure.
func (g *Gateway) degraded(err error) {
	metrics.EmbeddingDegradedTotal.Inc()
	g.logger.Warn("embedding degraded to local fallback", zap.Error(err))
}
