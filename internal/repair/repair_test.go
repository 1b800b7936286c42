package repair

import (
	"testing"

	"ebconv/internal/document"
	"ebconv/internal/validate"
)

func TestRepairFillsMetadata(t *testing.T) {
	doc := document.New()
	doc.Content = []document.Chapter{{
		ID: "c1",
		Content: []document.ContentNode{
			document.Paragraph{Children: []document.InlineNode{document.Text("x")}},
		},
	}}

	report := Repair(doc)
	if doc.Metadata.Title != "Untitled" {
		t.Errorf("title = %q", doc.Metadata.Title)
	}
	if len(doc.Metadata.Authors) != 1 || doc.Metadata.Authors[0] != "Unknown" {
		t.Errorf("authors = %v", doc.Metadata.Authors)
	}
	if doc.Metadata.Language != "und" {
		t.Errorf("language = %q", doc.Metadata.Language)
	}
	if len(report.Remaining) != 0 {
		t.Errorf("remaining = %+v", report.Remaining)
	}
	if len(report.Applied) != 3 {
		t.Errorf("applied = %v", report.Applied)
	}
}

func TestRepairStructure(t *testing.T) {
	doc := document.New()
	doc.Metadata.Title = "T"
	doc.Metadata.Authors = []string{"A"}
	doc.Metadata.Language = "en"
	doc.Metadata.CoverImageID = "nope"
	doc.Content = []document.Chapter{
		{ID: "c1", Content: []document.ContentNode{
			document.Heading{Level: 9, Children: []document.InlineNode{document.Text("h")}},
		}},
		{ID: "c1", Content: []document.ContentNode{
			document.Paragraph{Children: []document.InlineNode{document.Text("x")}},
		}},
		{ID: "empty"},
	}

	report := Repair(doc)

	if len(doc.Content) != 2 {
		t.Fatalf("chapters = %d, want empty one removed", len(doc.Content))
	}
	if doc.Content[0].ID == doc.Content[1].ID {
		t.Error("duplicate chapter id not regenerated")
	}
	h := doc.Content[0].Content[0].(document.Heading)
	if h.Level != 6 {
		t.Errorf("heading level = %d, want clamped to 6", h.Level)
	}
	if doc.Metadata.CoverImageID != "" {
		t.Errorf("dangling cover reference kept: %q", doc.Metadata.CoverImageID)
	}
	if validate.HasErrors(report.Remaining) {
		t.Errorf("errors remain: %+v", report.Remaining)
	}
}
