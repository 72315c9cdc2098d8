// Package assistant is the query-side façade: one entry point that routes a
// question through retrieval and resolves it into an answer.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/domain"
	"github.com/kailas-cloud/blograg/internal/domain/answer"
)

// Service orchestrates the ask flow.
type Service struct {
	router   Router
	resolver Resolver
	logger   *zap.Logger
}

func New(router Router, resolver Resolver, logger *zap.Logger) *Service {
	return &Service{router: router, resolver: resolver, logger: logger}
}

// Ask answers a user question. The routing verdict, not the caller, decides
// whether the answer comes from the corpus, the web, or general knowledge.
func (s *Service) Ask(ctx context.Context, query string) (answer.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return answer.Answer{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	start := time.Now()

	routed, err := s.router.Route(ctx, query)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("route query: %w", err)
	}

	ans, err := s.resolver.Resolve(ctx, query, routed)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("resolve answer: %w", err)
	}

	s.logger.Info("query answered",
		zap.String("provenance", string(ans.Provenance())),
		zap.Bool("low_confidence", ans.IsLowConfidence()),
		zap.Int("sources", len(ans.Sources())),
		zap.Duration("took", time.Since(start)),
	)
	return ans, nil
}
