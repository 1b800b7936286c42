package meta

import (
	"testing"

	"ebconv/internal/document"
)

func TestGetSetRoundTrip(t *testing.T) {
	doc := document.New()
	fields := map[string]string{
		"title":           "A Title",
		"subtitle":        "A Subtitle",
		"language":        "en",
		"publisher":       "Pub",
		"date":            "2020-01-02",
		"isbn13":          "9781234567897",
		"description":     "Desc",
		"series":          "The Series",
		"series-position": "1.5",
		"rights":          "CC BY",
	}
	for field, value := range fields {
		if err := Set(doc, field, value); err != nil {
			t.Fatalf("Set(%s): %v", field, err)
		}
	}
	for field, want := range fields {
		got, err := Get(doc, field)
		if err != nil {
			t.Fatalf("Get(%s): %v", field, err)
		}
		if got != want {
			t.Errorf("Get(%s) = %q, want %q", field, got, want)
		}
	}
}

func TestSetAuthorSplitsOnSemicolon(t *testing.T) {
	doc := document.New()
	if err := Set(doc, "author", "A One; B Two"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(doc.Metadata.Authors) != 2 || doc.Metadata.Authors[1] != "B Two" {
		t.Errorf("authors = %v", doc.Metadata.Authors)
	}
	got, _ := Get(doc, "author")
	if got != "A One; B Two" {
		t.Errorf("Get(author) = %q", got)
	}
}

func TestUnknownField(t *testing.T) {
	doc := document.New()
	if _, err := Get(doc, "bogus"); err == nil {
		t.Error("Get(bogus) succeeded")
	}
	if err := Set(doc, "bogus", "x"); err == nil {
		t.Error("Set(bogus) succeeded")
	}
}

func TestSetBadSeriesPosition(t *testing.T) {
	doc := document.New()
	if err := Set(doc, "series-position", "abc"); err == nil {
		t.Error("expected error for non-numeric position")
	}
}

func TestStripAll(t *testing.T) {
	doc := document.New()
	doc.Metadata.Title = "T"
	doc.Metadata.Authors = []string{"A"}
	doc.Metadata.CoverImageID = "cover"
	doc.Metadata.SetCustom("k", "v")

	if err := Strip(doc); err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if doc.Metadata.Title != "" || doc.Metadata.Authors != nil || doc.Metadata.Custom != nil {
		t.Errorf("metadata not stripped: %+v", doc.Metadata)
	}
	if doc.Metadata.CoverImageID != "cover" {
		t.Errorf("cover reference lost: %q", doc.Metadata.CoverImageID)
	}
}

func TestStripNamed(t *testing.T) {
	doc := document.New()
	doc.Metadata.Title = "T"
	doc.Metadata.Authors = []string{"A"}
	doc.Metadata.Series = &document.SeriesInfo{Name: "S"}

	if err := Strip(doc, "author", "series"); err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if doc.Metadata.Authors != nil || doc.Metadata.Series != nil {
		t.Errorf("named strip failed: %+v", doc.Metadata)
	}
	if doc.Metadata.Title != "T" {
		t.Errorf("title stripped unexpectedly")
	}
}
