// Package retrieval holds the router verdict types.
package retrieval

// Reason explains why a result is insufficient.
type Reason string

const (
	// ReasonNone marks a sufficient result.
	ReasonNone Reason = ""
	// ReasonEmptyIndex means the index holds no entries at all.
	ReasonEmptyIndex Reason = "empty_index"
	// ReasonBelowThreshold means candidates exist but none cleared the thresholds.
	ReasonBelowThreshold Reason = "below_threshold"
	// ReasonEmbedderMismatch means the query vector came from a different
	// embedder than the indexed vectors, so scores would be meaningless.
	ReasonEmbedderMismatch Reason = "embedder_mismatch"
)

// Candidate is a single ranked retrieval hit.
type Candidate struct {
	id         string
	documentID string
	chunkIndex int
	title      string
	text       string
	score      float64
}

// NewCandidate creates a retrieval candidate.
func NewCandidate(id, documentID string, chunkIndex int, title, text string, score float64) Candidate {
	return Candidate{
		id: id, documentID: documentID, chunkIndex: chunkIndex,
		title: title, text: text, score: score,
	}
}

// ID returns the index entry identifier.
func (c *Candidate) ID() string { return c.id }

// DocumentID returns the owning document identifier.
func (c *Candidate) DocumentID() string { return c.documentID }

// ChunkIndex returns the zero-based chunk index within the document.
func (c *Candidate) ChunkIndex() int { return c.chunkIndex }

// Title returns the owning document title.
func (c *Candidate) Title() string { return c.title }

// Text returns the chunk text.
func (c *Candidate) Text() string { return c.text }

// Score returns the cosine similarity score.
func (c *Candidate) Score() float64 { return c.score }

// Result is the router verdict: ranked candidates plus the sufficiency flags.
type Result struct {
	candidates    []Candidate
	sufficient    bool
	lowConfidence bool
	reason        Reason
}

// Sufficient creates a result backed by corpus candidates.
// lowConfidence is set when only the secondary threshold was cleared.
func Sufficient(candidates []Candidate, lowConfidence bool) Result {
	return Result{candidates: candidates, sufficient: true, lowConfidence: lowConfidence}
}

// Insufficient creates a miss result with a reason code.
func Insufficient(reason Reason) Result {
	return Result{reason: reason}
}

// Candidates returns the ranked candidates (empty on a miss).
func (r *Result) Candidates() []Candidate { return r.candidates }

// IsSufficient reports whether the corpus can answer the query.
func (r *Result) IsSufficient() bool { return r.sufficient }

// IsLowConfidence reports whether only the secondary threshold was cleared,
// so callers can surface a caveat to the end user.
func (r *Result) IsLowConfidence() bool { return r.lowConfidence }

// InsufficientReason returns the miss reason (ReasonNone when sufficient).
func (r *Result) InsufficientReason() Reason { return r.reason }
