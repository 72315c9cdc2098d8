package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/domain"
	domans "github.com/kailas-cloud/blograg/internal/domain/answer"
	domret "github.com/kailas-cloud/blograg/internal/domain/retrieval"
)

// --- Mocks ---

type mockGenerator struct {
	text       string
	err        error
	lastPrompt string
	callCount  int
}

func (m *mockGenerator) Complete(_ context.Context, prompt string) (string, error) {
	m.callCount++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

type mockWeb struct {
	urls        []string
	searchErrs  []error // consumed per call; nil entry means success
	pages       map[string]domain.Page
	fetchErr    error
	searchCalls int
}

func (m *mockWeb) Search(_ context.Context, _ string, _ int) ([]string, error) {
	m.searchCalls++
	if len(m.searchErrs) > 0 {
		err := m.searchErrs[0]
		m.searchErrs = m.searchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.urls, nil
}

func (m *mockWeb) Fetch(_ context.Context, url string) (domain.Page, error) {
	if m.fetchErr != nil {
		return domain.Page{}, m.fetchErr
	}
	p, ok := m.pages[url]
	if !ok {
		return domain.Page{}, errors.New("not found")
	}
	return p, nil
}

func sufficientResult(lowConfidence bool) domret.Result {
	return domret.Sufficient([]domret.Candidate{
		domret.NewCandidate("doc-1#0", "doc-1", 0, "Go Routines", "goroutines are cheap", 0.85),
		domret.NewCandidate("doc-2#1", "doc-2", 1, "Go Channels", "channels synchronize", 0.61),
	}, lowConfidence)
}

// --- Tests ---

func TestResolve_EmptyQuery(t *testing.T) {
	svc := New(&mockGenerator{}, &mockWeb{}, 5, zap.NewNop())

	_, err := svc.Resolve(context.Background(), "", sufficientResult(false))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResolve_CorpusProvenance(t *testing.T) {
	gen := &mockGenerator{text: "Goroutines are lightweight threads."}
	web := &mockWeb{}
	svc := New(gen, web, 5, zap.NewNop())

	ans, err := svc.Resolve(context.Background(), "what are goroutines", sufficientResult(false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Provenance() != domans.Corpus {
		t.Errorf("expected corpus provenance, got %q", ans.Provenance())
	}
	if ans.IsLowConfidence() {
		t.Error("unexpected low-confidence flag")
	}
	if ans.IngestSuggestion() != nil {
		t.Error("corpus answers must not carry an ingest suggestion")
	}
	if len(ans.Sources()) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(ans.Sources()))
	}
	if ans.Sources()[0].Title != "Go Routines" || ans.Sources()[0].Score != 0.85 {
		t.Errorf("source mismatch: %+v", ans.Sources()[0])
	}
	if web.searchCalls != 0 {
		t.Error("corpus path must not hit web search")
	}
	if !strings.Contains(gen.lastPrompt, "goroutines are cheap") {
		t.Error("prompt missing the candidate excerpt")
	}
}

func TestResolve_LowConfidenceCarriesOver(t *testing.T) {
	svc := New(&mockGenerator{text: "answer"}, &mockWeb{}, 5, zap.NewNop())

	ans, err := svc.Resolve(context.Background(), "q", sufficientResult(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ans.IsLowConfidence() {
		t.Error("expected low-confidence flag on the answer")
	}
}

func TestResolve_WebProvenance(t *testing.T) {
	gen := &mockGenerator{text: "According to the web..."}
	web := &mockWeb{
		urls: []string{"https://example.com/a", "https://example.com/b"},
		pages: map[string]domain.Page{
			"https://example.com/a": {URL: "https://example.com/a", Title: "Page A", Body: "body a"},
			"https://example.com/b": {URL: "https://example.com/b", Title: "Page B", Body: "body b"},
		},
	}
	svc := New(gen, web, 5, zap.NewNop())

	ans, err := svc.Resolve(context.Background(), "rust ownership", domret.Insufficient(domret.ReasonBelowThreshold))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Provenance() != domans.Web {
		t.Errorf("expected web provenance, got %q", ans.Provenance())
	}
	if len(ans.Sources()) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(ans.Sources()))
	}
	if ans.Sources()[0].URL != "https://example.com/a" {
		t.Errorf("source url mismatch: %+v", ans.Sources()[0])
	}
	sug := ans.IngestSuggestion()
	if sug == nil || sug.Topic != "rust ownership" {
		t.Errorf("expected ingest suggestion for the query, got %+v", sug)
	}
}

func TestResolve_GeneralKnowledgeWhenWebEmpty(t *testing.T) {
	gen := &mockGenerator{text: "From what I know..."}
	web := &mockWeb{urls: nil}
	svc := New(gen, web, 5, zap.NewNop())

	ans, err := svc.Resolve(context.Background(), "obscure topic", domret.Insufficient(domret.ReasonEmptyIndex))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Provenance() != domans.GeneralKnowledge {
		t.Errorf("expected general-knowledge provenance, got %q", ans.Provenance())
	}
	if len(ans.Sources()) != 0 {
		t.Errorf("expected no sources, got %d", len(ans.Sources()))
	}
	if ans.IngestSuggestion() == nil {
		t.Error("expected ingest suggestion")
	}
}

func TestResolve_SearchRetriedOnce(t *testing.T) {
	gen := &mockGenerator{text: "web answer"}
	web := &mockWeb{
		searchErrs: []error{errors.New("transient")},
		urls:       []string{"https://example.com/a"},
		pages: map[string]domain.Page{
			"https://example.com/a": {URL: "https://example.com/a", Title: "A", Body: "content"},
		},
	}
	svc := New(gen, web, 5, zap.NewNop())

	ans, err := svc.Resolve(context.Background(), "q", domret.Insufficient(domret.ReasonBelowThreshold))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if web.searchCalls != 2 {
		t.Errorf("expected exactly 2 search calls, got %d", web.searchCalls)
	}
	if ans.Provenance() != domans.Web {
		t.Errorf("expected web provenance after retry, got %q", ans.Provenance())
	}
}

func TestResolve_SearchFailsTwiceDegradesToGeneralKnowledge(t *testing.T) {
	gen := &mockGenerator{text: "fallback answer"}
	web := &mockWeb{searchErrs: []error{errors.New("down"), errors.New("still down")}}
	svc := New(gen, web, 5, zap.NewNop())

	ans, err := svc.Resolve(context.Background(), "q", domret.Insufficient(domret.ReasonBelowThreshold))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if web.searchCalls != 2 {
		t.Errorf("expected exactly 2 search calls, got %d", web.searchCalls)
	}
	if ans.Provenance() != domans.GeneralKnowledge {
		t.Errorf("expected general-knowledge degradation, got %q", ans.Provenance())
	}
}

func TestResolve_FetchFailuresSkipped(t *testing.T) {
	gen := &mockGenerator{text: "partial web answer"}
	web := &mockWeb{
		urls: []string{"https://bad.example.com", "https://good.example.com"},
		pages: map[string]domain.Page{
			"https://good.example.com": {URL: "https://good.example.com", Title: "Good", Body: "useful"},
		},
	}
	svc := New(gen, web, 5, zap.NewNop())

	ans, err := svc.Resolve(context.Background(), "q", domret.Insufficient(domret.ReasonBelowThreshold))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ans.Sources()) != 1 {
		t.Fatalf("expected 1 source after skipping the failed fetch, got %d", len(ans.Sources()))
	}
	if ans.Sources()[0].Title != "Good" {
		t.Errorf("wrong source survived: %+v", ans.Sources()[0])
	}
}

func TestResolve_GenerationFailure(t *testing.T) {
	gen := &mockGenerator{err: domain.ErrGenerationUnavailable}
	svc := New(gen, &mockWeb{}, 5, zap.NewNop())

	_, err := svc.Resolve(context.Background(), "q", sufficientResult(false))
	if !errors.Is(err, domain.ErrGenerationUnavailable) {
		t.Errorf("expected ErrGenerationUnavailable, got %v", err)
	}
}

func TestResolve_SourceTextTruncated(t *testing.T) {
	gen := &mockGenerator{text: "answer"}
	web := &mockWeb{
		urls: []string{"https://example.com/long"},
		pages: map[string]domain.Page{
			"https://example.com/long": {
				URL:   "https://example.com/long",
				Title: "Long",
				Body:  strings.Repeat("x", maxSourceChars*2),
			},
		},
	}
	svc := New(gen, web, 5, zap.NewNop())

	if _, err := svc.Resolve(context.Background(), "q", domret.Insufficient(domret.ReasonBelowThreshold)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(gen.lastPrompt, "x") > maxSourceChars {
		t.Errorf("prompt carries %d source chars, cap is %d", strings.Count(gen.lastPrompt, "x"), maxSourceChars)
	}
}

func TestResolve_SourceTruncationKeepsValidUTF8(t *testing.T) {
	gen := &mockGenerator{text: "answer"}
	// Three-byte runes: maxSourceChars is not a multiple of three, so a
	// byte-exact cut would land mid-sequence.
	web := &mockWeb{
		urls: []string{"https://example.com/ja"},
		pages: map[string]domain.Page{
			"https://example.com/ja": {
				URL:   "https://example.com/ja",
				Title: "Japanese",
				Body:  strings.Repeat("語", maxSourceChars),
			},
		},
	}
	svc := New(gen, web, 5, zap.NewNop())

	if _, err := svc.Resolve(context.Background(), "q", domret.Insufficient(domret.ReasonBelowThreshold)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(gen.lastPrompt) {
		t.Error("prompt is not valid UTF-8 after source truncation")
	}
}
