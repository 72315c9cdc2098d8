// Package answer holds the assembled assistant response types.
package answer

// Provenance labels where an answer's grounding came from.
type Provenance string

const (
	// Corpus means the answer was grounded in stored blog documents.
	Corpus Provenance = "corpus"
	// Web means the answer was grounded in fetched web pages.
	Web Provenance = "web"
	// GeneralKnowledge means the model answered without external grounding.
	GeneralKnowledge Provenance = "general-knowledge"
)

// Source points at one piece of grounding material.
type Source struct {
	Title string
	URL   string
	Score float64
}

// Suggestion offers to ingest the query's topic as a new corpus document.
// Attached only to Web and GeneralKnowledge answers.
type Suggestion struct {
	Topic string
}

// Answer is the final assistant response.
type Answer struct {
	text          string
	provenance    Provenance
	lowConfidence bool
	sources       []Source
	suggestion    *Suggestion
}

// New creates an answer.
func New(text string, provenance Provenance, sources []Source) Answer {
	return Answer{text: text, provenance: provenance, sources: sources}
}

// WithSuggestion returns a copy carrying an ingest suggestion.
func (a Answer) WithSuggestion(topic string) Answer {
	a.suggestion = &Suggestion{Topic: topic}
	return a
}

// WithLowConfidence returns a copy flagged as low confidence.
func (a Answer) WithLowConfidence() Answer {
	a.lowConfidence = true
	return a
}

// Text returns the generated answer text.
func (a *Answer) Text() string { return a.text }

// Provenance returns the grounding label.
func (a *Answer) Provenance() Provenance { return a.provenance }

// IsLowConfidence reports whether the corpus match was weak.
func (a *Answer) IsLowConfidence() bool { return a.lowConfidence }

// Sources returns the grounding sources.
func (a *Answer) Sources() []Source { return a.sources }

// IngestSuggestion returns the ingest suggestion, nil for corpus answers.
func (a *Answer) IngestSuggestion() *Suggestion { return a.suggestion }
