// Package chunker splits document text into bounded, sentence-aligned chunks
// for embedding.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/blograg/internal/domain"
)

// DefaultTargetSize is the default chunk size in characters.
const DefaultTargetSize = 300

// sentenceRegex splits on terminal punctuation followed by whitespace or EOL.
var sentenceRegex = regexp.MustCompile(`[^.!?]*[.!?]+(?:\s+|$)`)

// Chunk is a contiguous slice of a document's text.
type Chunk struct {
	Index int
	Text  string
}

// Split breaks text into sentence-aligned chunks of roughly targetSize
// characters. Sentences accumulate into a buffer; when appending the next
// sentence would overflow targetSize and the buffer is non-empty, the buffer
// is flushed. Chunks that still exceed 2×targetSize after alignment are
// re-split on whitespace into word groups of ~targetSize/5 words.
//
// Никогда не возвращает пустой список: пустой ввод даёт один пустой chunk.
func Split(text string, targetSize int) ([]Chunk, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("%w: target size must be positive, got %d", domain.ErrInvalidInput, targetSize)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []Chunk{{Index: 0, Text: trimmed}}, nil
	}

	sentences := splitSentences(trimmed)
	if len(sentences) == 0 {
		// No terminal punctuation at all: the whole text is one chunk.
		sentences = []string{trimmed}
	}

	var parts []string
	var buf strings.Builder
	for _, s := range sentences {
		if buf.Len() > 0 && buf.Len()+1+len(s) > targetSize {
			parts = append(parts, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(s)
	}
	if buf.Len() > 0 {
		parts = append(parts, buf.String())
	}

	// Hard ceiling: re-split anything over 2×targetSize on word boundaries.
	var out []Chunk
	for _, p := range parts {
		if len(p) <= 2*targetSize {
			out = append(out, Chunk{Index: len(out), Text: p})
			continue
		}
		for _, g := range splitWords(p, wordsPerGroup(targetSize)) {
			out = append(out, Chunk{Index: len(out), Text: g})
		}
	}

	if len(out) == 0 {
		out = []Chunk{{Index: 0, Text: trimmed}}
	}
	return out, nil
}

// splitSentences extracts trimmed sentences ending in terminal punctuation.
// Matches may start past the previous one (punctuation not followed by
// whitespace, abbreviations, URLs); the gap belongs to the sentence that
// closes it, so no byte of the input is ever dropped. Trailing text without
// punctuation is kept as a final sentence.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceRegex.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// wordsPerGroup is the word-count heuristic for oversized chunks:
// ~targetSize/5 words per group, assuming short average word length.
func wordsPerGroup(targetSize int) int {
	n := targetSize / 5
	if n < 1 {
		n = 1
	}
	return n
}

func splitWords(text string, groupSize int) []string {
	words := strings.Fields(text)
	var groups []string
	for i := 0; i < len(words); i += groupSize {
		end := i + groupSize
		if end > len(words) {
			end = len(words)
		}
		groups = append(groups, strings.Join(words[i:end], " "))
	}
	return groups
}
