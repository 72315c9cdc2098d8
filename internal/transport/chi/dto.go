package chi

import (
	"time"

	"github.com/kailas-cloud/blograg/internal/domain/answer"
	"github.com/kailas-cloud/blograg/internal/domain/document"
	ingestuc "github.com/kailas-cloud/blograg/internal/usecase/ingest"
)

// ErrorCode classifies API errors for clients.
type ErrorCode string

const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeValidationFailed  ErrorCode = "validation_failed"
	CodeBlogNotFound      ErrorCode = "blog_not_found"
	CodeIndexUnavailable  ErrorCode = "index_unavailable"
	CodeGenerationFailed  ErrorCode = "generation_failed"
	CodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is the assistant's answer.
type AskResponse struct {
	Answer        string          `json:"answer"`
	Provenance    string          `json:"provenance"`
	LowConfidence bool            `json:"low_confidence,omitempty"`
	Sources       []SourceItem    `json:"sources,omitempty"`
	Suggestion    *SuggestionItem `json:"suggestion,omitempty"`
}

// SourceItem is one grounding source in an answer.
type SourceItem struct {
	Title string  `json:"title"`
	URL   string  `json:"url,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// SuggestionItem offers to add the asked topic to the corpus.
type SuggestionItem struct {
	Topic string `json:"topic"`
}

// BlogRequest is the body of POST /blogs and PUT /blogs/{id}.
type BlogRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Topic   string   `json:"topic,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// BlogResponse is a stored blog document.
type BlogResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Topic     string    `json:"topic,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Content   string    `json:"content,omitempty"`
	Preview   string    `json:"preview,omitempty"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// IngestResponse confirms a completed ingest or update.
type IngestResponse struct {
	ID         string `json:"id"`
	ChunkCount int    `json:"chunk_count"`
	Version    int    `json:"version"`
}

// BlogListResponse wraps GET /blogs.
type BlogListResponse struct {
	Items []BlogResponse `json:"items"`
	Total int            `json:"total"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status       string            `json:"status"`
	Checks       map[string]string `json:"checks"`
	IndexEntries int               `json:"index_entries"`
}

func answerToDTO(a answer.Answer) AskResponse {
	resp := AskResponse{
		Answer:        a.Text(),
		Provenance:    string(a.Provenance()),
		LowConfidence: a.IsLowConfidence(),
	}
	for _, src := range a.Sources() {
		resp.Sources = append(resp.Sources, SourceItem{
			Title: src.Title,
			URL:   src.URL,
			Score: src.Score,
		})
	}
	if sug := a.IngestSuggestion(); sug != nil {
		resp.Suggestion = &SuggestionItem{Topic: sug.Topic}
	}
	return resp
}

func receiptToDTO(r ingestuc.Receipt) IngestResponse {
	return IngestResponse{ID: r.DocumentID, ChunkCount: r.ChunkCount, Version: r.Version}
}

func blogToDTO(doc document.Document, withContent bool) BlogResponse {
	resp := BlogResponse{
		ID:        doc.ID(),
		Title:     doc.Title(),
		Topic:     doc.Topic(),
		Tags:      doc.Tags(),
		Version:   doc.Version(),
		CreatedAt: doc.CreatedAt(),
	}
	if withContent {
		resp.Content = doc.Content()
	} else {
		resp.Preview = doc.Preview(200)
	}
	return resp
}
