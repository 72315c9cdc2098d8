package assistant

import (
	"context"

	"github.com/kailas-cloud/blograg/internal/domain/answer"
	domret "github.com/kailas-cloud/blograg/internal/domain/retrieval"
)

// Router decides whether the corpus can answer a query.
type Router interface {
	Route(ctx context.Context, query string) (domret.Result, error)
}

// Resolver produces the final answer for a routed query.
type Resolver interface {
	Resolve(ctx context.Context, query string, routed domret.Result) (answer.Answer, error)
}
