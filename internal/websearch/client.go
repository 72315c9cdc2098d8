// Package websearch is the external web-search collaborator: URL discovery
// via the DuckDuckGo HTML endpoint and best-effort page text extraction.
// Zero search results is a value, not an error.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/domain"
)

const (
	searchEndpoint = "https://html.duckduckgo.com/html/"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	// maxBodyBytes bounds fetched page size.
	maxBodyBytes = 2 << 20 // 2MB
)

// Compile-time check: Client implements domain.WebSearcher.
var _ domain.WebSearcher = (*Client)(nil)

// Client performs web searches and page fetches with bounded timeouts.
type Client struct {
	httpClient *http.Client
	searchURL  string
	logger     *zap.Logger
}

// New creates a web search client. fetchTimeout bounds every HTTP call.
func New(fetchTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		searchURL:  searchEndpoint,
		logger:     logger,
	}
}

// Search returns up to maxResults result URLs for the query.
// No results is not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]string, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: maxResults must be positive, got %d", domain.ErrInvalidInput, maxResults)
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.searchURL, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	urls, err := parseSearchResults(io.LimitReader(resp.Body, maxBodyBytes), maxResults)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	c.logger.Debug("web search finished",
		zap.String("query", query),
		zap.Int("results", len(urls)),
	)
	return urls, nil
}

// parseSearchResults extracts result links from the DuckDuckGo HTML page.
func parseSearchResults(body io.Reader, maxResults int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var urls []string
	seen := make(map[string]bool)
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		target := resolveRedirect(href)
		if target == "" || seen[target] {
			return true
		}
		seen[target] = true
		urls = append(urls, target)
		return len(urls) < maxResults
	})
	return urls, nil
}

// resolveRedirect unwraps the uddg redirect parameter DuckDuckGo puts in
// result links. Direct links pass through unchanged.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}

// Fetch downloads a page and extracts readable title and body text.
func (c *Client) Fetch(ctx context.Context, pageURL string) (domain.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.Page{}, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Page{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Page{}, fmt.Errorf("fetch %s: HTTP %d", pageURL, resp.StatusCode)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return domain.Page{}, fmt.Errorf("parse url %s: %w", pageURL, err)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxBodyBytes), parsed)
	if err != nil {
		return domain.Page{}, fmt.Errorf("extract text from %s: %w", pageURL, err)
	}

	return domain.Page{
		URL:   pageURL,
		Title: strings.TrimSpace(article.Title),
		Body:  normalizeWhitespace(article.TextContent),
	}, nil
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
