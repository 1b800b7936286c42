package txt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"ebconv/internal/document"
)

// Write serializes a document as plain text. Structure that has no plain-text
// equivalent degrades: lists become "-" or "N." lines, tables are tab-joined,
// images become "[image: ...]" placeholders, and rules become "---".
func Write(doc *document.Document, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if doc.Metadata.Title != "" {
		fmt.Fprintf(bw, "%s\n\n", doc.Metadata.Title)
	}

	for i, chapter := range doc.Content {
		if i > 0 {
			bw.WriteString("\n\n")
		}
		if chapter.Title != "" && chapter.Title != doc.Metadata.Title {
			fmt.Fprintf(bw, "%s\n\n", chapter.Title)
		}
		for _, node := range chapter.Content {
			writeNode(bw, node, "")
		}
	}

	return bw.Flush()
}

func writeNode(w *bufio.Writer, node document.ContentNode, prefix string) {
	switch v := node.(type) {
	case document.Paragraph:
		fmt.Fprintf(w, "%s%s\n\n", prefix, document.FlattenInlines(v.Children))
	case document.Heading:
		fmt.Fprintf(w, "%s%s\n\n", prefix, document.FlattenInlines(v.Children))
	case document.List:
		for i, item := range v.Items {
			marker := "- "
			if v.Ordered {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			fmt.Fprintf(w, "%s%s%s\n", prefix, marker, flattenBlocks(item))
		}
		w.WriteString("\n")
	case document.Table:
		if len(v.Headers) > 0 {
			fmt.Fprintf(w, "%s%s\n", prefix, joinCells(v.Headers))
		}
		for _, row := range v.Rows {
			fmt.Fprintf(w, "%s%s\n", prefix, joinCells(row))
		}
		w.WriteString("\n")
	case document.BlockQuote:
		for _, c := range v.Children {
			writeNode(w, c, prefix+"> ")
		}
	case document.CodeBlock:
		for _, line := range strings.Split(v.Code, "\n") {
			fmt.Fprintf(w, "%s%s\n", prefix, line)
		}
		w.WriteString("\n")
	case document.Image:
		label := v.AltText
		if label == "" {
			label = v.ResourceID
		}
		fmt.Fprintf(w, "%s[image: %s]\n\n", prefix, label)
	case document.HorizontalRule:
		fmt.Fprintf(w, "%s---\n\n", prefix)
	}
}

// flattenBlocks joins the plain text of a list item's block content.
func flattenBlocks(blocks []document.ContentNode) string {
	var parts []string
	for _, b := range blocks {
		switch v := b.(type) {
		case document.Paragraph:
			parts = append(parts, document.FlattenInlines(v.Children))
		case document.Heading:
			parts = append(parts, document.FlattenInlines(v.Children))
		case document.CodeBlock:
			parts = append(parts, v.Code)
		}
	}
	return strings.Join(parts, " ")
}

func joinCells(cells [][]document.InlineNode) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = document.FlattenInlines(cell)
	}
	return strings.Join(parts, "\t")
}
