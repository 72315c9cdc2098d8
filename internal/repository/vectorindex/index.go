// Package vectorindex is the in-memory similarity index: it owns
// (vector, metadata) entries and answers nearest-neighbor queries by cosine
// similarity. The index is a derived, rebuildable cache over the blog store.
package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kailas-cloud/blograg/internal/domain"
)

// Metadata is the document context carried alongside each vector.
type Metadata struct {
	DocumentID string
	ChunkIndex int
	Title      string
	Text       string
}

// Hit is a single nearest-neighbor match.
type Hit struct {
	ID    string
	Score float64
	Meta  Metadata
}

type entry struct {
	id     string
	vector []float32
	meta   Metadata
	seq    uint64 // insertion sequence, tie-break for equal scores
}

// Index is a mutex-guarded in-memory vector index. Any backend plugged in
// behind the same contract must normalize its scores to raw cosine
// similarity in [-1, 1] so router thresholds stay backend-independent.
//
// All vectors in one index must come from one embedder: provider vectors and
// local fallback vectors are not comparable (see domain.ErrEmbedderMismatch).
type Index struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []*entry
	seq     uint64
	dim     int
	source  domain.EmbedderSource
}

// New creates an empty index.
func New() *Index {
	return &Index{entries: make(map[string]*entry)}
}

// Upsert inserts or wholesale-replaces the entry for id. Replacement is
// atomic to readers: queries never observe a half-replaced entry. A replaced
// entry re-enters at the back of the insertion order.
func (x *Index) Upsert(_ context.Context, id string, vector []float32, source domain.EmbedderSource, meta Metadata) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidInput)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrInvalidInput)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if len(x.entries) == 0 {
		x.dim = len(vector)
		x.source = source
	} else {
		if len(vector) != x.dim {
			return fmt.Errorf("%w: got %d, index holds %d", domain.ErrVectorDimMismatch, len(vector), x.dim)
		}
		if source != x.source {
			return fmt.Errorf("%w: index holds %q vectors, got %q", domain.ErrEmbedderMismatch, x.source, source)
		}
	}

	if old, ok := x.entries[id]; ok {
		x.removeFromOrder(old)
	}

	x.seq++
	e := &entry{id: id, vector: vector, meta: meta, seq: x.seq}
	x.entries[id] = e
	x.order = append(x.order, e)
	return nil
}

// Delete removes the entry for id. Absent id is a no-op, not an error.
func (x *Index) Delete(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	e, ok := x.entries[id]
	if !ok {
		return nil
	}
	delete(x.entries, id)
	x.removeFromOrder(e)
	return nil
}

// Query returns up to k nearest neighbors by cosine similarity, descending.
// Equal scores rank by insertion order, earlier first, so output is
// deterministic. An empty index yields an empty slice.
//
// The query vector's source must match the indexed vectors': a local
// fallback vector scored against provider embeddings (or the reverse) is
// ErrEmbedderMismatch, even when the dimensions happen to agree.
func (x *Index) Query(_ context.Context, vector []float32, source domain.EmbedderSource, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.order) == 0 {
		return nil, nil
	}
	if len(vector) != x.dim {
		return nil, fmt.Errorf("%w: query has %d, index holds %d", domain.ErrVectorDimMismatch, len(vector), x.dim)
	}
	if source != x.source {
		return nil, fmt.Errorf("%w: index holds %q vectors, query is %q", domain.ErrEmbedderMismatch, x.source, source)
	}

	hits := make([]Hit, 0, len(x.order))
	seqs := make(map[string]uint64, len(x.order))
	for _, e := range x.order {
		hits = append(hits, Hit{ID: e.id, Score: Cosine(vector, e.vector), Meta: e.meta})
		seqs[e.id] = e.seq
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return seqs[hits[i].ID] < seqs[hits[j].ID]
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the total number of entries.
func (x *Index) Count(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries), nil
}

// Clear drops every entry, resetting the dimension and source guards.
func (x *Index) Clear(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = make(map[string]*entry)
	x.order = nil
	return nil
}

func (x *Index) removeFromOrder(e *entry) {
	for i, o := range x.order {
		if o == e {
			x.order = append(x.order[:i], x.order[i+1:]...)
			return
		}
	}
}

// Cosine computes cosine similarity dot(a,b)/(|a|*|b|).
// Zero-norm input yields 0.0, not NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
