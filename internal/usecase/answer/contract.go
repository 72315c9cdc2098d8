package answer

import (
	"context"

	"github.com/kailas-cloud/blograg/internal/domain"
)

// Generator is the external text-completion collaborator.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// WebSearcher discovers and fetches supplementary source pages.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
	Fetch(ctx context.Context, url string) (domain.Page, error)
}
