package domain

import "errors"

var (
	// ErrInvalidInput signals a caller contract violation (empty query, non-positive k).
	ErrInvalidInput = errors.New("invalid input")
	// ErrDocumentNotFound signals a missing blog document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrIndexUnavailable signals that the similarity index itself failed.
	// Distinct from "no match found" — callers must be able to tell the two apart.
	ErrIndexUnavailable = errors.New("similarity index unavailable")
	// ErrGenerationUnavailable signals that the text-generation service failed outright.
	ErrGenerationUnavailable = errors.New("text generation unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	// The gateway absorbs it into the local fallback; only adapters return it.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbedderMismatch signals an attempt to mix vectors from different
	// embedders in one index. Provider vectors and local fallback vectors
	// live in unrelated spaces and must never be compared.
	ErrEmbedderMismatch = errors.New("embedder mismatch")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
