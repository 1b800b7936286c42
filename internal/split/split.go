// Package split divides a document into multiple documents, by chapter or at
// headings of a given level. Each piece clones the source metadata and keeps
// only the resources its content references.
package split

import (
	"fmt"

	"ebconv/internal/document"
)

// ByChapter returns one document per chapter.
func ByChapter(doc *document.Document) []*document.Document {
	pieces := make([]*document.Document, 0, len(doc.Content))
	for _, ch := range doc.Content {
		pieces = append(pieces, newPiece(doc, []document.Chapter{ch}))
	}
	return pieces
}

// ByHeading splits at every heading of the given level. Content before the
// first matching heading stays with the piece that precedes it; each piece
// becomes a single-chapter document titled after its heading.
func ByHeading(doc *document.Document, level int) ([]*document.Document, error) {
	if level < 1 || level > 6 {
		return nil, fmt.Errorf("heading level %d out of range 1..6", level)
	}

	var pieces []*document.Document
	var current []document.ContentNode
	currentTitle := doc.Metadata.Title
	piece := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		piece++
		ch := document.Chapter{
			ID:      fmt.Sprintf("part-%d", piece),
			Title:   currentTitle,
			Content: current,
		}
		pieces = append(pieces, newPiece(doc, []document.Chapter{ch}))
		current = nil
	}

	for _, ch := range doc.Content {
		for _, node := range ch.Content {
			if h, ok := node.(document.Heading); ok && h.Level == level {
				flush()
				currentTitle = document.FlattenInlines(h.Children)
			}
			current = append(current, node)
		}
	}
	flush()

	return pieces, nil
}

// newPiece clones the parent metadata and carries over only the resources the
// given chapters reference.
func newPiece(parent *document.Document, chapters []document.Chapter) *document.Document {
	piece := document.New()
	piece.Metadata = parent.Metadata
	piece.TextDirection = parent.TextDirection
	piece.EpubVersion = parent.EpubVersion
	piece.Content = chapters

	referenced := make(map[string]bool)
	for _, ch := range chapters {
		for _, node := range ch.Content {
			collectResourceIDs(node, referenced)
		}
	}
	if parent.Metadata.CoverImageID != "" {
		referenced[parent.Metadata.CoverImageID] = true
	}
	for id := range referenced {
		if res, ok := parent.Resources[id]; ok {
			piece.Resources[id] = res
		}
	}
	if _, ok := piece.Resources[piece.Metadata.CoverImageID]; !ok {
		piece.Metadata.CoverImageID = ""
	}
	return piece
}

func collectResourceIDs(node document.ContentNode, into map[string]bool) {
	switch v := node.(type) {
	case document.Image:
		into[v.ResourceID] = true
	case document.List:
		for _, item := range v.Items {
			for _, sub := range item {
				collectResourceIDs(sub, into)
			}
		}
	case document.BlockQuote:
		for _, c := range v.Children {
			collectResourceIDs(c, into)
		}
	}
}
