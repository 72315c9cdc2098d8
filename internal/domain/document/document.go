// Package document holds the blog document aggregate.
package document

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// excerptLen is the number of content characters blended into EmbeddingText.
const excerptLen = 200

// Document is a blog post aggregate (immutable value object).
// The identifier never changes once assigned; every content-replacing update
// bumps the version by exactly 1.
type Document struct {
	id        string
	title     string
	content   string
	topic     string
	tags      []string
	createdAt time.Time
	version   int
}

// New validates and creates a Document at version 1.
func New(id, title, content, topic string, tags []string, createdAt time.Time) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if title == "" {
		return Document{}, fmt.Errorf("title is required")
	}
	if content == "" {
		return Document{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}

	return Document{
		id:        id,
		title:     title,
		content:   content,
		topic:     topic,
		tags:      cloneTags(tags),
		createdAt: createdAt,
		version:   1,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, title, content, topic string, tags []string, createdAt time.Time, version int) Document {
	return Document{
		id: id, title: title, content: content, topic: topic,
		tags: tags, createdAt: createdAt, version: version,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Content returns the full body text.
func (d *Document) Content() string { return d.content }

// Topic returns the free-form topic label.
func (d *Document) Topic() string { return d.topic }

// Tags returns the ordered tag list.
func (d *Document) Tags() []string { return d.tags }

// CreatedAt returns the creation timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// Version returns the monotonically incrementing version counter.
func (d *Document) Version() int { return d.version }

// WithUpdate returns a copy with replaced title/content/topic/tags and the
// version bumped by exactly 1. The id and createdAt are preserved.
func (d *Document) WithUpdate(title, content, topic string, tags []string) (Document, error) {
	if title == "" {
		title = d.title
	}
	if content == "" {
		content = d.content
	}
	if len(content) > MaxContentSize {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if topic == "" {
		topic = d.topic
	}
	if tags == nil {
		tags = d.tags
	}

	return Document{
		id: d.id, title: title, content: content, topic: topic,
		tags: cloneTags(tags), createdAt: d.createdAt, version: d.version + 1,
	}, nil
}

// EmbeddingText is the synthetic text embedded for whole-document similarity:
// title, excerpt, body and tags concatenated.
func (d *Document) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(d.title)
	b.WriteString("\n")
	b.WriteString(truncate(d.content, excerptLen))
	b.WriteString("\n")
	b.WriteString(d.content)
	if len(d.tags) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(d.tags, " "))
	}
	return b.String()
}

// Preview returns the content truncated to roughly n bytes with an
// ellipsis, used by list summaries.
func (d *Document) Preview(n int) string {
	if len(d.content) <= n {
		return d.content
	}
	return truncate(d.content, n) + "..."
}

// truncate cuts s to at most n bytes, backing up so a multi-byte UTF-8
// sequence is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	c := make([]string, len(tags))
	copy(c, tags)
	return c
}
