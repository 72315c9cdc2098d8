// Package ingest owns the document write path: chunk, embed, index.
//
// Ingest of one document is a causal chain (chunk → embed → upsert); the
// index entries of version N are fully superseded, never merged, when
// version N+1 is stored.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/chunker"
	"github.com/kailas-cloud/blograg/internal/domain"
	"github.com/kailas-cloud/blograg/internal/domain/document"
	"github.com/kailas-cloud/blograg/internal/repository/vectorindex"
)

// Receipt confirms a completed ingest.
type Receipt struct {
	DocumentID string
	ChunkCount int
	Version    int
}

// Service is the ingest pipeline.
type Service struct {
	store      Store
	index      Index
	embed      Embedder
	targetSize int
	now        func() time.Time
	logger     *zap.Logger
}

// New creates an ingest service. targetSize is the chunker character budget.
func New(store Store, index Index, embed Embedder, targetSize int, logger *zap.Logger) *Service {
	if targetSize <= 0 {
		targetSize = chunker.DefaultTargetSize
	}
	return &Service{
		store:      store,
		index:      index,
		embed:      embed,
		targetSize: targetSize,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
	}
}

// WithClock overrides the timestamp source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Ingest stores a new document and indexes its chunks.
func (s *Service) Ingest(ctx context.Context, title, content, topic string, tags []string) (Receipt, error) {
	doc, err := document.New(uuid.NewString(), title, content, topic, tags, s.now())
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if err := s.store.Create(ctx, doc); err != nil {
		return Receipt{}, fmt.Errorf("store document: %w", err)
	}

	n, err := s.indexDocument(ctx, doc)
	if err != nil {
		return Receipt{}, err
	}

	s.logger.Info("document ingested",
		zap.String("document_id", doc.ID()),
		zap.Int("chunks", n),
	)
	return Receipt{DocumentID: doc.ID(), ChunkCount: n, Version: doc.Version()}, nil
}

// Update replaces a document's content, bumps its version by exactly 1, and
// swaps the old index entries for new ones.
func (s *Service) Update(ctx context.Context, id, title, content, topic string, tags []string) (Receipt, error) {
	old, err := s.store.Get(ctx, id)
	if err != nil {
		return Receipt{}, fmt.Errorf("load document: %w", err)
	}

	updated, err := old.WithUpdate(title, content, topic, tags)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if err := s.store.Update(ctx, updated); err != nil {
		return Receipt{}, fmt.Errorf("store document: %w", err)
	}

	// Supersede, never merge: drop every entry derived from the old content
	// before the new entries go in.
	if err := s.dropEntries(ctx, old); err != nil {
		return Receipt{}, err
	}

	n, err := s.indexDocument(ctx, updated)
	if err != nil {
		return Receipt{}, err
	}

	s.logger.Info("document updated",
		zap.String("document_id", id),
		zap.Int("version", updated.Version()),
		zap.Int("chunks", n),
	)
	return Receipt{DocumentID: id, ChunkCount: n, Version: updated.Version()}, nil
}

// Delete removes a document and its index entries.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if err := s.dropEntries(ctx, doc); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Rebuild drops the whole index and replays the store into it. The index is
// a derived cache; this is the recovery path.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	if err := s.index.Clear(ctx); err != nil {
		return 0, fmt.Errorf("clear index: %w", err)
	}

	docs, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}

	total := 0
	for _, doc := range docs {
		n, err := s.indexDocument(ctx, doc)
		if err != nil {
			return total, err
		}
		total += n
	}

	s.logger.Info("index rebuilt", zap.Int("documents", len(docs)), zap.Int("chunks", total))
	return total, nil
}

// indexDocument chunks and embeds doc, then upserts one entry per chunk.
func (s *Service) indexDocument(ctx context.Context, doc document.Document) (int, error) {
	chunks, err := chunker.Split(doc.Content(), s.targetSize)
	if err != nil {
		return 0, fmt.Errorf("chunk document: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	batch, err := s.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	for i, c := range chunks {
		meta := vectorindex.Metadata{
			DocumentID: doc.ID(),
			ChunkIndex: c.Index,
			Title:      doc.Title(),
			Text:       c.Text,
		}
		if err := s.index.Upsert(ctx, entryID(doc.ID(), c.Index), batch.Embeddings[i], batch.Source, meta); err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
	}
	return len(chunks), nil
}

// dropEntries removes the index entries derived from doc's current content.
// Chunking is deterministic, so re-splitting the stored content recovers
// exactly the entry ids that were inserted for it.
func (s *Service) dropEntries(ctx context.Context, doc document.Document) error {
	chunks, err := chunker.Split(doc.Content(), s.targetSize)
	if err != nil {
		return fmt.Errorf("chunk document: %w", err)
	}
	for _, c := range chunks {
		if err := s.index.Delete(ctx, entryID(doc.ID(), c.Index)); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
	}
	return nil
}

func entryID(docID string, chunkIndex int) string {
	return fmt.Sprintf("%s#%d", docID, chunkIndex)
}
