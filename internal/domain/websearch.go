package domain

import "context"

// Page is best-effort text content extracted from a fetched URL.
type Page struct {
	URL   string
	Title string
	Body  string
}

// WebSearcher is the web-search collaborator contract.
// Search returning zero URLs is a value, not an error.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]string, error)
	Fetch(ctx context.Context, url string) (Page, error)
}
