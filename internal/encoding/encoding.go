// Package encoding normalizes the text content of a document: Unicode NFC,
// whitespace collapsing, and optional smart-quote straightening.
package encoding

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"ebconv/internal/document"
)

// Options selects which normalizations the Normalizer applies.
type Options struct {
	// NFC applies Unicode canonical composition.
	NFC bool
	// CollapseWhitespace folds runs of whitespace into single spaces.
	CollapseWhitespace bool
	// StraightenQuotes replaces typographic quotes with ASCII ones.
	StraightenQuotes bool
}

// DefaultOptions enables NFC and whitespace collapsing.
func DefaultOptions() Options {
	return Options{NFC: true, CollapseWhitespace: true}
}

// Normalizer rewrites every text node in a document according to its options.
// It satisfies the converter's Transform interface.
type Normalizer struct {
	Options Options
}

// NewNormalizer returns a Normalizer with the given options.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{Options: opts}
}

func (n *Normalizer) Name() string { return "normalize-text" }

// Apply normalizes the document in place and returns it.
func (n *Normalizer) Apply(doc *document.Document) (*document.Document, error) {
	doc.Metadata.Title = n.normalize(doc.Metadata.Title)
	doc.Metadata.Subtitle = n.normalize(doc.Metadata.Subtitle)
	for i, a := range doc.Metadata.Authors {
		doc.Metadata.Authors[i] = n.normalize(a)
	}
	doc.Metadata.Description = n.normalize(doc.Metadata.Description)

	for i := range doc.Content {
		ch := &doc.Content[i]
		ch.Title = n.normalize(ch.Title)
		for j, node := range ch.Content {
			ch.Content[j] = n.normalizeContent(node)
		}
	}
	return doc, nil
}

var quoteStraightener = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
)

func (n *Normalizer) normalize(s string) string {
	if n.Options.NFC {
		s = norm.NFC.String(s)
	}
	if n.Options.StraightenQuotes {
		s = quoteStraightener.Replace(s)
	}
	if n.Options.CollapseWhitespace {
		s = strings.Join(strings.Fields(s), " ")
	}
	return s
}

func (n *Normalizer) normalizeContent(node document.ContentNode) document.ContentNode {
	switch v := node.(type) {
	case document.Paragraph:
		v.Children = n.normalizeInlines(v.Children)
		return v
	case document.Heading:
		v.Children = n.normalizeInlines(v.Children)
		return v
	case document.List:
		for i, item := range v.Items {
			for j, sub := range item {
				v.Items[i][j] = n.normalizeContent(sub)
			}
		}
		return v
	case document.Table:
		for i, cell := range v.Headers {
			v.Headers[i] = n.normalizeInlines(cell)
		}
		for i, row := range v.Rows {
			for j, cell := range row {
				v.Rows[i][j] = n.normalizeInlines(cell)
			}
		}
		return v
	case document.BlockQuote:
		for i, c := range v.Children {
			v.Children[i] = n.normalizeContent(c)
		}
		return v
	case document.Image:
		v.AltText = n.normalize(v.AltText)
		v.Caption = n.normalize(v.Caption)
		return v
	default:
		return node
	}
}

func (n *Normalizer) normalizeInlines(nodes []document.InlineNode) []document.InlineNode {
	for i, node := range nodes {
		nodes[i] = n.normalizeInline(node)
	}
	return nodes
}

func (n *Normalizer) normalizeInline(node document.InlineNode) document.InlineNode {
	switch v := node.(type) {
	case document.Text:
		return document.Text(n.normalize(string(v)))
	case document.Emphasis:
		v.Children = n.normalizeInlines(v.Children)
		return v
	case document.Strong:
		v.Children = n.normalizeInlines(v.Children)
		return v
	case document.Link:
		v.Children = n.normalizeInlines(v.Children)
		return v
	case document.Superscript:
		v.Children = n.normalizeInlines(v.Children)
		return v
	case document.Subscript:
		v.Children = n.normalizeInlines(v.Children)
		return v
	default:
		return node
	}
}
