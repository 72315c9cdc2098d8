// Package chi is the HTTP transport: request decoding, domain error mapping,
// response encoding. No business logic lives here.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/domain"
	logpkg "github.com/kailas-cloud/blograg/internal/logger"
	"github.com/kailas-cloud/blograg/internal/metrics"
	assistantuc "github.com/kailas-cloud/blograg/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/blograg/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/blograg/internal/usecase/ingest"
)

const maxRequestBody = 1 << 20 // 1 MiB

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	assistant     *assistantuc.Service
	ingest        *ingestuc.Service
	blogs         ingestuc.Store
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	assistant *assistantuc.Service,
	ingest *ingestuc.Service,
	blogs ingestuc.Store,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		assistant: assistant,
		ingest:    ingest,
		blogs:     blogs,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeBlogNotFound),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, CodeIndexUnavailable),
		sentinelHandler(domain.ErrGenerationUnavailable, http.StatusBadGateway, CodeGenerationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, CodeInternalError),
	}
	return s
}

// Routes builds the router with the standard middleware chain. extra
// middleware (request logging) runs after RequestID so it sees the id.
func (s *Server) Routes(extra ...func(http.Handler) http.Handler) http.Handler {
	r := chirouter.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	for _, mw := range extra {
		r.Use(mw)
	}
	r.Use(s.jsonRecoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.getHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/ask", s.postAsk)
		r.Route("/blogs", func(r chirouter.Router) {
			r.Post("/", s.postBlog)
			r.Get("/", s.listBlogs)
			r.Get("/{id}", s.getBlog)
			r.Put("/{id}", s.putBlog)
			r.Delete("/{id}", s.deleteBlog)
		})
	})

	return r
}

// postAsk handles POST /api/v1/ask.
func (s *Server) postAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Query is required")
		return
	}

	ans, err := s.assistant.Ask(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerToDTO(ans))
}

// postBlog handles POST /api/v1/blogs.
func (s *Server) postBlog(w http.ResponseWriter, r *http.Request) {
	var req BlogRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := s.ingest.Ingest(r.Context(), req.Title, req.Content, req.Topic, req.Tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/blogs/"+receipt.DocumentID)
	writeJSON(w, http.StatusCreated, receiptToDTO(receipt))
}

// listBlogs handles GET /api/v1/blogs.
func (s *Server) listBlogs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.blogs.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := BlogListResponse{Items: make([]BlogResponse, len(docs)), Total: len(docs)}
	for i, doc := range docs {
		resp.Items[i] = blogToDTO(doc, false)
	}
	writeJSON(w, http.StatusOK, resp)
}

// getBlog handles GET /api/v1/blogs/{id}.
func (s *Server) getBlog(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	doc, err := s.blogs.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, blogToDTO(doc, true))
}

// putBlog handles PUT /api/v1/blogs/{id}.
func (s *Server) putBlog(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	var req BlogRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := s.ingest.Update(r.Context(), id, req.Title, req.Content, req.Topic, req.Tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receiptToDTO(receipt))
}

// deleteBlog handles DELETE /api/v1/blogs/{id}.
func (s *Server) deleteBlog(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	if err := s.ingest.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getHealth handles GET /healthz.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:       string(report.Status),
		Checks:       checks,
		IndexEntries: report.IndexEntries,
	})
}

// jsonRecoverer превращает панику хендлера в JSON 500 вместо пустого ответа.
func (s *Server) jsonRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logpkg.FromContext(r.Context()).Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the sentinel's message for known errors and a
// generic message otherwise, so internals never leak to clients.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrDocumentNotFound,
		domain.ErrIndexUnavailable,
		domain.ErrGenerationUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
