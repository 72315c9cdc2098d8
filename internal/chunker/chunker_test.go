package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/blograg/internal/domain"
)

func TestSplit_InvalidTargetSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Split("some text.", size)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("target size %d: expected ErrInvalidInput, got %v", size, err)
		}
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	chunks, err := Split("   \n\t  ", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "" {
		t.Errorf("expected empty chunk text, got %q", chunks[0].Text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	text := "Go is a statically typed language."
	chunks, err := Split(text, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("expected %q, got %q", text, chunks[0].Text)
	}
}

func TestSplit_SentenceAlignment(t *testing.T) {
	// Both sentences fit individually but not together, so the buffer
	// flushes between them.
	chunks, err := Split("Python is great. Python is easy to learn.", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0].Text != "Python is great." {
		t.Errorf("chunk 0: got %q", chunks[0].Text)
	}
	if chunks[1].Text != "Python is easy to learn." {
		t.Errorf("chunk 1: got %q", chunks[1].Text)
	}
}

func TestSplit_IndicesSequential(t *testing.T) {
	text := strings.Repeat("One short sentence here. ", 40)
	chunks, err := Split(text, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
}

func TestSplit_ContentPreserved(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one too! Does a question survive? It does."
	chunks, err := Split(text, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var joined []string
	for _, c := range chunks {
		joined = append(joined, c.Text)
	}
	if got := strings.Join(joined, " "); got != text {
		t.Errorf("concatenation mismatch:\n got %q\nwant %q", got, text)
	}
}

func TestSplit_PunctuationWithoutSpace(t *testing.T) {
	// Terminal punctuation not followed by whitespace (URLs, abbreviations)
	// must not drop the prefix or duplicate a suffix.
	for _, text := range []string{
		"a.b c.",
		"Visit pkg.go.dev/std for details. Then read the package docs.",
		"Dr.Smith wrote the first draft. The end.",
	} {
		chunks, err := Split(text, 3)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", text, err)
		}

		var joined []string
		for _, c := range chunks {
			joined = append(joined, c.Text)
		}
		got := strings.Join(strings.Fields(strings.Join(joined, " ")), " ")
		want := strings.Join(strings.Fields(text), " ")
		if got != want {
			t.Errorf("concatenation mismatch:\n got %q\nwant %q", got, want)
		}
	}
}

func TestSplit_HardCeiling(t *testing.T) {
	// One giant unbreakable sentence: no terminal punctuation until the very
	// end, far over 2x the target. Must be word-split, not kept whole.
	text := strings.Repeat("word ", 200) + "end."
	target := 50

	chunks, err := Split(text, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("oversized sentence not re-split, got %d chunks", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Text) > 2*target {
			t.Errorf("chunk %d exceeds hard ceiling: %d chars", c.Index, len(c.Text))
		}
	}
}

func TestSplit_NoPunctuation(t *testing.T) {
	text := "no terminal punctuation at all just words"
	chunks, err := Split(text, 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("got %q", chunks[0].Text)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("Sentences repeat here. Over and over again. ", 30)

	first, err := Split(text, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Split(text, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("chunk count differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
