// Package repair applies automatic fixes for the auto-fixable issues the
// validate package reports.
package repair

import (
	"fmt"

	"github.com/google/uuid"

	"ebconv/internal/document"
	"ebconv/internal/validate"
)

// Report describes what a repair pass did.
type Report struct {
	// Applied lists human-readable descriptions of the fixes performed.
	Applied []string
	// Remaining holds the issues still present after repair.
	Remaining []validate.Issue
}

// Repair fixes the auto-fixable issues in place and returns a report. The
// document is re-validated afterwards; anything not auto-fixable is listed
// under Remaining.
func Repair(doc *document.Document) Report {
	var report Report
	note := func(format string, args ...any) {
		report.Applied = append(report.Applied, fmt.Sprintf(format, args...))
	}

	if doc.Metadata.Title == "" {
		doc.Metadata.Title = "Untitled"
		note("set missing title to %q", doc.Metadata.Title)
	}
	if len(doc.Metadata.Authors) == 0 {
		doc.Metadata.Authors = []string{"Unknown"}
		note("set missing author to %q", doc.Metadata.Authors[0])
	}
	if doc.Metadata.Language == "" {
		doc.Metadata.Language = "und"
		note("set missing language to %q", doc.Metadata.Language)
	}

	seen := make(map[string]bool)
	kept := doc.Content[:0]
	for _, ch := range doc.Content {
		if len(ch.Content) == 0 {
			note("removed empty chapter %q", ch.ID)
			continue
		}
		if seen[ch.ID] {
			old := ch.ID
			ch.ID = uuid.NewString()
			note("renamed duplicate chapter id %q to %q", old, ch.ID)
		}
		seen[ch.ID] = true

		for i, node := range ch.Content {
			ch.Content[i] = fixNode(node, ch.ID, note)
		}
		kept = append(kept, ch)
	}
	doc.Content = kept

	if doc.Metadata.CoverImageID != "" {
		if _, ok := doc.Resources[doc.Metadata.CoverImageID]; !ok {
			note("cleared dangling cover image reference %q", doc.Metadata.CoverImageID)
			doc.Metadata.CoverImageID = ""
		}
	}

	report.Remaining = validate.Check(doc)
	return report
}

func fixNode(node document.ContentNode, chapterID string, note func(string, ...any)) document.ContentNode {
	switch v := node.(type) {
	case document.Heading:
		if v.Level < 1 {
			note("chapter %q: raised heading level %d to 1", chapterID, v.Level)
			v.Level = 1
		} else if v.Level > 6 {
			note("chapter %q: lowered heading level %d to 6", chapterID, v.Level)
			v.Level = 6
		}
		return v
	case document.List:
		for i, item := range v.Items {
			for j, sub := range item {
				v.Items[i][j] = fixNode(sub, chapterID, note)
			}
		}
		return v
	case document.BlockQuote:
		for i, c := range v.Children {
			v.Children[i] = fixNode(c, chapterID, note)
		}
		return v
	default:
		return node
	}
}
