// Package docs holds the source documents a schedule's citations point
// into. Documents arrive as plain text or HTML; HTML gets its visible
// text extracted lazily, on the first quote check, so quote checks see
// what a reader sees without paying for documents nothing cites.
package docs

import (
	"strings"
	"sync"
	"time"

	"github.com/ovachev/planproof/internal/cache"
	"github.com/ovachev/planproof/internal/model"
	"golang.org/x/net/html"
)

// extractedText is shared by every Store. Each job builds its own store
// over the same document set (batch runs especially), so visible-text
// extraction is keyed by content hash and survives across stores.
var extractedText = cache.NewMemoryCache(30*time.Minute, 10*time.Minute)

// Store indexes source documents by name for citation verification
type Store struct {
	raw map[string]string // document name -> content as provided

	mu    sync.Mutex
	texts map[string]string // document name -> searchable text, lazy
}

// NewStore builds a store from the provided documents. Content is kept
// as-is; searchable text is derived on first lookup.
func NewStore(documents []model.SourceDocument) *Store {
	s := &Store{
		raw:   make(map[string]string, len(documents)),
		texts: make(map[string]string, len(documents)),
	}
	for _, doc := range documents {
		s.raw[doc.Name] = doc.Content
	}
	return s
}

// Has reports whether a document with the given name was provided
func (s *Store) Has(name string) bool {
	_, ok := s.raw[name]
	return ok
}

// Contains reports whether the named document contains the exact quote.
// Used by the provenance audit as the hallucination check: a quote the
// document does not contain means the citation was fabricated.
func (s *Store) Contains(name, quote string) bool {
	if quote == "" {
		return false
	}
	text, ok := s.text(name)
	if !ok {
		return false
	}
	return strings.Contains(text, quote)
}

// Names returns the names of all stored documents
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.raw))
	for name := range s.raw {
		names = append(names, name)
	}
	return names
}

// Len returns the number of stored documents
func (s *Store) Len() int {
	return len(s.raw)
}

// text returns the searchable text of a document, deriving it on first
// use. Quote checks run from concurrent validation goroutines, so the
// per-store memo is locked.
func (s *Store) text(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text, ok := s.texts[name]; ok {
		return text, true
	}
	content, ok := s.raw[name]
	if !ok {
		return "", false
	}
	text := searchableText(content)
	s.texts[name] = text
	return text, true
}

// searchableText returns content ready for substring matching, going
// through the shared extraction cache for HTML inputs.
func searchableText(content string) string {
	if !looksLikeHTML(content) {
		return content
	}

	key := cache.Key(content)
	if cached, ok := extractedText.Get(key); ok {
		return cached
	}

	text := extractVisibleText(content)
	extractedText.Set(key, text, 0)
	return text
}

// looksLikeHTML is a cheap sniff for markup content
func looksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<!doctype") {
		return true
	}
	lower := strings.ToLower(trimmed)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body") || strings.Contains(lower, "<p>")
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		// Unparseable markup falls back to the raw content
		return htmlContent
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String()
}
