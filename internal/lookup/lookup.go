// Package lookup queries external metadata providers for bibliographic
// records matching a title, author, or ISBN.
package lookup

import (
	"context"

	"ebconv/internal/document"
)

// Query describes what to search for. At least one field must be set.
type Query struct {
	Title  string
	Author string
	ISBN   string
}

// Result is one candidate record from a provider.
type Result struct {
	Title       string
	Authors     []string
	ISBN13      string
	Publisher   string
	PublishDate string
}

// Provider is a metadata source.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, q Query) ([]Result, error)
}

// ApplyResult copies the non-empty fields of a result into document metadata,
// overwriting existing values.
func ApplyResult(doc *document.Document, r Result) {
	if r.Title != "" {
		doc.Metadata.Title = r.Title
	}
	if len(r.Authors) > 0 {
		doc.Metadata.Authors = r.Authors
	}
	if r.ISBN13 != "" {
		doc.Metadata.ISBN13 = r.ISBN13
	}
	if r.Publisher != "" {
		doc.Metadata.Publisher = r.Publisher
	}
	if r.PublishDate != "" {
		doc.Metadata.PublishDate = r.PublishDate
	}
}
