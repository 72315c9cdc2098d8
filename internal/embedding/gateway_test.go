package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/domain"
)

// --- Mocks ---

type mockProvider struct {
	vec       []float32
	err       error
	batchVecs [][]float32
	batchErr  error
	calls     int
}

func (m *mockProvider) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, Source: domain.SourceProvider}, nil
}

func (m *mockProvider) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	vecs := m.batchVecs
	if vecs == nil {
		vecs = make([][]float32, len(texts))
		for i := range vecs {
			vecs[i] = m.vec
		}
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs, Source: domain.SourceProvider}, nil
}

// singleProvider implements only domain.Embedder, no batch method.
type singleProvider struct {
	vec []float32
}

func (m *singleProvider) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: m.vec, Source: domain.SourceProvider}, nil
}

// --- Tests ---

func TestGatewayEmbed_ProviderPath(t *testing.T) {
	prov := &mockProvider{vec: []float32{0.1, 0.2, 0.3}}
	gw := NewGateway(prov, 3, zap.NewNop())

	res, err := gw.Embed(context.Background(), "goroutines")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != domain.SourceProvider {
		t.Errorf("expected provider source, got %q", res.Source)
	}
	if len(res.Embedding) != 3 {
		t.Errorf("expected 3 dims, got %d", len(res.Embedding))
	}
}

func TestGatewayEmbed_DegradesToLocal(t *testing.T) {
	prov := &mockProvider{err: errors.New("connection refused")}
	gw := NewGateway(prov, 64, zap.NewNop())

	res, err := gw.Embed(context.Background(), "goroutines and channels")
	if err != nil {
		t.Fatalf("provider failure must not propagate, got %v", err)
	}
	if res.Source != domain.SourceLocal {
		t.Errorf("expected local source, got %q", res.Source)
	}
	if len(res.Embedding) != 64 {
		t.Errorf("expected 64 dims, got %d", len(res.Embedding))
	}
}

func TestGatewayEmbed_OfflineMode(t *testing.T) {
	gw := NewGateway(nil, 32, zap.NewNop())

	res, err := gw.Embed(context.Background(), "offline text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != domain.SourceLocal {
		t.Errorf("expected local source, got %q", res.Source)
	}
}

func TestGatewayEmbed_EmptyText(t *testing.T) {
	gw := NewGateway(nil, 32, zap.NewNop())

	_, err := gw.Embed(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGatewayEmbedBatch_SingleSourcePerBatch(t *testing.T) {
	prov := &mockProvider{batchErr: errors.New("rate limited")}
	gw := NewGateway(prov, 48, zap.NewNop())

	res, err := gw.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != domain.SourceLocal {
		t.Errorf("expected the whole batch degraded to local, got %q", res.Source)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(res.Embeddings))
	}
	for i, v := range res.Embeddings {
		if len(v) != 48 {
			t.Errorf("vector %d has %d dims", i, len(v))
		}
	}
}

func TestGatewayEmbedBatch_ProviderLengthMismatch(t *testing.T) {
	// Провайдер вернул не то количество векторов — батч деградирует целиком.
	prov := &mockProvider{batchVecs: [][]float32{{0.1}}}
	gw := NewGateway(prov, 16, zap.NewNop())

	res, err := gw.EmbedBatch(context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != domain.SourceLocal {
		t.Errorf("expected local source after mismatch, got %q", res.Source)
	}
	if len(res.Embeddings) != 2 {
		t.Errorf("expected 2 vectors, got %d", len(res.Embeddings))
	}
}

func TestGatewayEmbedBatch_FallsBackToPerText(t *testing.T) {
	prov := &singleProvider{vec: []float32{1, 0}}
	gw := NewGateway(prov, 2, zap.NewNop())

	res, err := gw.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != domain.SourceProvider {
		t.Errorf("expected provider source, got %q", res.Source)
	}
	if len(res.Embeddings) != 2 {
		t.Errorf("expected 2 vectors, got %d", len(res.Embeddings))
	}
}

func TestGatewayEmbedBatch_EmptyTextRejected(t *testing.T) {
	gw := NewGateway(nil, 8, zap.NewNop())

	_, err := gw.EmbedBatch(context.Background(), []string{"ok", ""})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
