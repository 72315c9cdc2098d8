// Package answer assembles the final response: corpus-grounded when the
// router found enough, otherwise web search or raw model knowledge.
package answer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/domain"
	domans "github.com/kailas-cloud/blograg/internal/domain/answer"
	domret "github.com/kailas-cloud/blograg/internal/domain/retrieval"
	"github.com/kailas-cloud/blograg/internal/metrics"
)

// maxSourceChars bounds how much of each fetched page goes into the prompt.
const maxSourceChars = 2000

// Service is the fallback orchestrator.
type Service struct {
	generator  Generator
	web        WebSearcher
	maxSources int
	logger     *zap.Logger
}

// New creates an orchestrator. maxSources bounds web page fetches per query.
func New(generator Generator, web WebSearcher, maxSources int, logger *zap.Logger) *Service {
	if maxSources <= 0 {
		maxSources = 5
	}
	return &Service{generator: generator, web: web, maxSources: maxSources, logger: logger}
}

// Resolve turns a router verdict into an Answer.
//
// Generation failure surfaces as domain.ErrGenerationUnavailable; a
// partially-built or silently-empty answer is never returned.
func (s *Service) Resolve(ctx context.Context, query string, routed domret.Result) (domans.Answer, error) {
	if query == "" {
		return domans.Answer{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	if routed.IsSufficient() {
		return s.fromCorpus(ctx, query, routed)
	}
	return s.fromFallback(ctx, query)
}

// fromCorpus grounds the answer in the top retrieval candidates.
func (s *Service) fromCorpus(ctx context.Context, query string, routed domret.Result) (domans.Answer, error) {
	candidates := routed.Candidates()

	var b strings.Builder
	b.WriteString("Answer the question using only the blog excerpts below.\n\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "Excerpt %d (from %q):\n%s\n\n", i+1, c.Title(), c.Text())
	}
	b.WriteString("Question: ")
	b.WriteString(query)

	text, err := s.generator.Complete(ctx, b.String())
	if err != nil {
		return domans.Answer{}, fmt.Errorf("corpus answer: %w", err)
	}

	sources := make([]domans.Source, len(candidates))
	for i, c := range candidates {
		sources[i] = domans.Source{Title: c.Title(), Score: c.Score()}
	}

	metrics.AnswerProvenanceTotal.WithLabelValues(string(domans.Corpus)).Inc()
	ans := domans.New(text, domans.Corpus, sources)
	if routed.IsLowConfidence() {
		ans = ans.WithLowConfidence()
	}
	return ans, nil
}

// fromFallback gathers web sources, degrading to raw model knowledge when
// the web yields nothing. Both paths suggest ingesting the topic.
func (s *Service) fromFallback(ctx context.Context, query string) (domans.Answer, error) {
	pages := s.gatherPages(ctx, query)

	if len(pages) == 0 {
		text, err := s.generator.Complete(ctx, fmt.Sprintf(
			"Answer from your general knowledge. Be upfront about uncertainty.\n\nQuestion: %s", query,
		))
		if err != nil {
			return domans.Answer{}, fmt.Errorf("general-knowledge answer: %w", err)
		}
		metrics.AnswerProvenanceTotal.WithLabelValues(string(domans.GeneralKnowledge)).Inc()
		return domans.New(text, domans.GeneralKnowledge, nil).WithSuggestion(query), nil
	}

	var b strings.Builder
	b.WriteString("Answer the question using the web sources below.\n\n")
	sources := make([]domans.Source, 0, len(pages))
	for i, p := range pages {
		fmt.Fprintf(&b, "Source %d: %s (%s)\n%s\n\n", i+1, p.Title, p.URL, truncateRunes(p.Body, maxSourceChars))
		sources = append(sources, domans.Source{Title: p.Title, URL: p.URL})
	}
	b.WriteString("Question: ")
	b.WriteString(query)

	text, err := s.generator.Complete(ctx, b.String())
	if err != nil {
		return domans.Answer{}, fmt.Errorf("web answer: %w", err)
	}

	metrics.AnswerProvenanceTotal.WithLabelValues(string(domans.Web)).Inc()
	return domans.New(text, domans.Web, sources).WithSuggestion(query), nil
}

// truncateRunes cuts s to at most n bytes, backing up so a multi-byte
// UTF-8 sequence is never split mid-rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// gatherPages searches and fetches source pages. The search is retried once
// on transient failure; fetch failures skip the page. Возвращает пустой
// список, когда веб ничего не дал — это сигнал, не ошибка.
func (s *Service) gatherPages(ctx context.Context, query string) []domain.Page {
	urls, err := s.web.Search(ctx, query, s.maxSources)
	if err != nil {
		s.logger.Warn("web search failed, retrying once", zap.Error(err))
		urls, err = s.web.Search(ctx, query, s.maxSources)
		if err != nil {
			s.logger.Warn("web search retry failed", zap.Error(err))
			return nil
		}
	}

	var pages []domain.Page
	for _, u := range urls {
		if len(pages) == s.maxSources {
			break
		}
		page, err := s.web.Fetch(ctx, u)
		if err != nil {
			s.logger.Debug("page fetch failed", zap.String("url", u), zap.Error(err))
			continue
		}
		if page.Body == "" {
			continue
		}
		pages = append(pages, page)
	}
	return pages
}
