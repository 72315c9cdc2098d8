package embcache

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/blograg/internal/db"
	"github.com/kailas-cloud/blograg/internal/domain"
)

// --- Mocks ---

type mockKV struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	setKeys []string
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte)}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKV) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.setKeys = append(m.setKeys, key)
	return nil
}

type mockInner struct {
	vec    []float32
	source domain.EmbedderSource
	err    error
	calls  int
	texts  []string
}

func (m *mockInner) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, Source: m.source}, nil
}

// --- Tests ---

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockInner{vec: []float32{0.5, -1.25}, source: domain.SourceProvider}
	kv := newMockKV()
	c := New(inner, kv, nil, zap.NewNop())
	ctx := context.Background()

	first, err := c.Embed(ctx, "goroutine scheduling")
	if err != nil {
		t.Fatalf("first embed: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 inner call, got %d", inner.calls)
	}

	second, err := c.Embed(ctx, "goroutine scheduling")
	if err != nil {
		t.Fatalf("second embed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("cache hit must not call inner, got %d calls", inner.calls)
	}
	if len(second.Embedding) != len(first.Embedding) {
		t.Fatalf("vector length changed: %d vs %d", len(second.Embedding), len(first.Embedding))
	}
	for i := range first.Embedding {
		if first.Embedding[i] != second.Embedding[i] {
			t.Errorf("cached vector differs at [%d]", i)
		}
	}
	if second.Source != domain.SourceProvider {
		t.Errorf("cached vectors are provider vectors, got %q", second.Source)
	}
}

func TestEmbed_LocalVectorsNotCached(t *testing.T) {
	inner := &mockInner{vec: []float32{1, 2}, source: domain.SourceLocal}
	kv := newMockKV()
	c := New(inner, kv, nil, zap.NewNop())

	if _, err := c.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(kv.setKeys) != 0 {
		t.Errorf("local fallback vector must never enter the cache, stored %d keys", len(kv.setKeys))
	}
}

func TestEmbed_StoreFailureFallsThrough(t *testing.T) {
	// Cache backend down: embedding still works, just uncached.
	inner := &mockInner{vec: []float32{1}, source: domain.SourceProvider}
	kv := newMockKV()
	kv.getErr = errors.New("connection reset")
	kv.setErr = errors.New("connection reset")
	c := New(inner, kv, nil, zap.NewNop())

	res, err := c.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("cache failure must not break embedding: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("unexpected vector: %v", res.Embedding)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	innerErr := errors.New("provider down")
	c := New(&mockInner{err: innerErr}, newMockKV(), nil, zap.NewNop())

	_, err := c.Embed(context.Background(), "text")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected inner error, got %v", err)
	}
}

func TestBatchEmbed_PartialHitsPreserveOrder(t *testing.T) {
	inner := &mockInner{vec: []float32{9, 9}, source: domain.SourceProvider}
	kv := newMockKV()
	c := New(inner, kv, nil, zap.NewNop())
	ctx := context.Background()

	// Warm the cache for "b" only.
	warm := &mockInner{vec: []float32{5, 5}, source: domain.SourceProvider}
	if _, err := New(warm, kv, nil, zap.NewNop()).Embed(ctx, "b"); err != nil {
		t.Fatalf("warm: %v", err)
	}

	res, err := c.BatchEmbed(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("batch embed: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(res.Embeddings))
	}
	// "b" comes from cache, "a" and "c" from the inner embedder.
	if res.Embeddings[1][0] != 5 {
		t.Errorf("cached vector lost its position: %v", res.Embeddings[1])
	}
	if res.Embeddings[0][0] != 9 || res.Embeddings[2][0] != 9 {
		t.Errorf("fresh vectors misplaced: %v", res.Embeddings)
	}
	if len(inner.texts) != 2 || inner.texts[0] != "a" || inner.texts[1] != "c" {
		t.Errorf("inner embedder saw wrong texts: %v", inner.texts)
	}
}

func TestBatchEmbed_AllHitsSkipInner(t *testing.T) {
	inner := &mockInner{vec: []float32{1}, source: domain.SourceProvider}
	kv := newMockKV()
	c := New(inner, kv, nil, zap.NewNop())
	ctx := context.Background()

	for _, text := range []string{"x", "y"} {
		if _, err := c.Embed(ctx, text); err != nil {
			t.Fatalf("warm %q: %v", text, err)
		}
	}
	callsAfterWarm := inner.calls

	res, err := c.BatchEmbed(ctx, []string{"x", "y"})
	if err != nil {
		t.Fatalf("batch embed: %v", err)
	}
	if inner.calls != callsAfterWarm {
		t.Errorf("fully cached batch must not call inner")
	}
	if res.Source != domain.SourceProvider {
		t.Errorf("expected provider source, got %q", res.Source)
	}
}

func TestBatchEmbed_LocalBatchNotCached(t *testing.T) {
	inner := &mockInner{vec: []float32{1}, source: domain.SourceLocal}
	kv := newMockKV()
	c := New(inner, kv, nil, zap.NewNop())

	res, err := c.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("batch embed: %v", err)
	}
	if res.Source != domain.SourceLocal {
		t.Errorf("expected local source, got %q", res.Source)
	}
	if len(kv.setKeys) != 0 {
		t.Errorf("local batch must not be cached, stored %d keys", len(kv.setKeys))
	}
}

func TestCacheKey_DistinctPerText(t *testing.T) {
	c := New(&mockInner{}, newMockKV(), nil, zap.NewNop())

	if c.cacheKey("one") == c.cacheKey("two") {
		t.Error("distinct texts share a cache key")
	}
	if c.cacheKey("same") != c.cacheKey("same") {
		t.Error("cache key not deterministic")
	}
}

func TestVectorBytesRoundtrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.14159}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("value mismatch at [%d]: %v vs %v", i, in[i], out[i])
		}
	}
}

func TestBytesToVector_CorruptData(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for non-multiple-of-4 data")
	}
}
