// Package retrieval implements the router that decides whether a query is
// answerable from the corpus or needs the fallback chain.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/domain"
	domret "github.com/kailas-cloud/blograg/internal/domain/retrieval"
	"github.com/kailas-cloud/blograg/internal/metrics"
	"github.com/kailas-cloud/blograg/internal/repository/vectorindex"
)

// Config holds the router tunables. Thresholds apply to cosine similarity
// scores; they are configuration, not correctness rules.
type Config struct {
	PrimaryThreshold   float64
	SecondaryThreshold float64
	Limit              int
}

// DefaultConfig returns the default router tunables.
func DefaultConfig() Config {
	return Config{
		PrimaryThreshold:   0.40,
		SecondaryThreshold: 0.25,
		Limit:              3,
	}
}

// Service routes queries: embed, query the index, threshold the candidates.
type Service struct {
	index  Index
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a retrieval router.
func New(index Index, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultConfig().Limit
	}
	return &Service{index: index, embed: embed, cfg: cfg, logger: logger}
}

// Route classifies a query as found-in-corpus or fallback-needed.
//
// Index failure is returned as domain.ErrIndexUnavailable — callers must be
// able to tell "nothing relevant" from "retrieval subsystem broken".
func (s *Service) Route(ctx context.Context, query string) (domret.Result, error) {
	if query == "" {
		return domret.Result{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		return domret.Result{}, fmt.Errorf("embed query: %w", err)
	}

	// Caller gave up while the embed call was in flight.
	if ctx.Err() != nil {
		return domret.Result{}, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, ctx.Err())
	}

	// Over-fetch 2× to leave room for threshold post-filtering.
	hits, err := s.index.Query(ctx, embRes.Embedding, embRes.Source, s.cfg.Limit*2)
	if errors.Is(err, domain.ErrEmbedderMismatch) {
		// Provider died at query time and the gateway degraded to the local
		// embedder: its vector cannot be scored against provider embeddings,
		// so the corpus is unavailable for this query and the fallback chain
		// takes over.
		s.verdict("embedder_mismatch")
		s.logger.Warn("query embedder does not match the index, skipping corpus",
			zap.String("query_source", string(embRes.Source)),
		)
		return domret.Insufficient(domret.ReasonEmbedderMismatch), nil
	}
	if err != nil {
		return domret.Result{}, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	if len(hits) == 0 {
		s.verdict("empty_index")
		return domret.Insufficient(domret.ReasonEmptyIndex), nil
	}

	if kept := s.filter(hits, s.cfg.PrimaryThreshold); len(kept) > 0 {
		s.verdict("sufficient")
		return domret.Sufficient(kept, false), nil
	}

	if kept := s.filter(hits, s.cfg.SecondaryThreshold); len(kept) > 0 {
		s.verdict("low_confidence")
		s.logger.Debug("retrieval matched only the secondary threshold",
			zap.String("query", query),
			zap.Float64("top_score", hits[0].Score),
		)
		return domret.Sufficient(kept, true), nil
	}

	s.verdict("below_threshold")
	return domret.Insufficient(domret.ReasonBelowThreshold), nil
}

// filter keeps hits scoring strictly above threshold, truncated to the
// configured limit. Hits arrive from the index already sorted by score
// descending with insertion-order tie-break, so output stays deterministic.
func (s *Service) filter(hits []vectorindex.Hit, threshold float64) []domret.Candidate {
	var kept []domret.Candidate
	for _, h := range hits {
		if h.Score <= threshold {
			continue
		}
		kept = append(kept, domret.NewCandidate(
			h.ID, h.Meta.DocumentID, h.Meta.ChunkIndex, h.Meta.Title, h.Meta.Text, h.Score,
		))
		if len(kept) == s.cfg.Limit {
			break
		}
	}
	return kept
}

func (s *Service) verdict(outcome string) {
	metrics.RetrievalVerdictsTotal.WithLabelValues(outcome).Inc()
}
