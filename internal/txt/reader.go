// Package txt reads and writes plain-text books. Reading splits paragraphs on
// blank lines; writing flattens the content tree back to plain text.
package txt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"ebconv/internal/document"
	"ebconv/internal/progress"
)

const readOperation = "Reading text"

// ErrInvalidUTF8 is returned for input that is neither valid UTF-8 nor
// BOM-marked UTF-16.
var ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

// Read parses plain text into a single-chapter document. The first non-empty
// line becomes the document and chapter title; paragraphs are separated by
// blank lines, and line breaks within a paragraph collapse to spaces.
func Read(r io.Reader, ph progress.Handler) (*document.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	progress.Emit(ph, readOperation, 0, 1, "Parsing text")

	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	doc := document.New()
	var nodes []document.ContentNode

	for _, block := range splitParagraphs(text) {
		if doc.Metadata.Title == "" {
			doc.Metadata.Title = firstLine(block)
		}
		joined := strings.Join(strings.Fields(block), " ")
		if joined == "" {
			continue
		}
		nodes = append(nodes, document.Paragraph{
			Children: []document.InlineNode{document.Text(joined)},
		})
	}

	doc.Content = []document.Chapter{{
		ID:      "chapter-1",
		Title:   doc.Metadata.Title,
		Content: nodes,
	}}

	progress.Emit(ph, readOperation, 1, 1, "Done")
	return doc, nil
}

// decodeText strips a UTF-8 BOM or converts UTF-16 input (detected by BOM)
// to UTF-8. Input without a BOM must be valid UTF-8.
func decodeText(raw []byte) (string, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		raw = raw[3:]
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}), bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}

// splitParagraphs breaks text on runs of blank lines.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	var blocks []string
	for _, block := range strings.Split(normalized, "\n\n") {
		if strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func firstLine(block string) string {
	line, _, _ := strings.Cut(block, "\n")
	return strings.TrimSpace(line)
}
