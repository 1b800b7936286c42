package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ebconv/internal/document"
)

func TestOpenLibraryLookupByISBN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("isbn"); got != "9781234567897" {
			t.Errorf("isbn param = %q", got)
		}
		w.Write([]byte(`{"docs":[{
			"title":"Found Book",
			"author_name":["Jane Doe"],
			"isbn":["1234567890","9781234567897"],
			"publisher":["Pub House","Other"],
			"first_publish_year":1999
		}]}`))
	}))
	defer srv.Close()

	p := &OpenLibrary{BaseURL: srv.URL, Client: srv.Client()}
	results, err := p.Lookup(context.Background(), Query{ISBN: "9781234567897"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	r := results[0]
	if r.Title != "Found Book" || r.ISBN13 != "9781234567897" ||
		r.Publisher != "Pub House" || r.PublishDate != "1999" {
		t.Errorf("result = %+v", r)
	}
}

func TestOpenLibraryLookupByTitleAuthor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("title") != "Dune" || q.Get("author") != "Herbert" {
			t.Errorf("params = %v", q)
		}
		w.Write([]byte(`{"docs":[]}`))
	}))
	defer srv.Close()

	p := &OpenLibrary{BaseURL: srv.URL, Client: srv.Client()}
	results, err := p.Lookup(context.Background(), Query{Title: "Dune", Author: "Herbert"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v", results)
	}
}

func TestOpenLibraryEmptyQuery(t *testing.T) {
	p := &OpenLibrary{}
	if _, err := p.Lookup(context.Background(), Query{}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenLibraryErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := &OpenLibrary{BaseURL: srv.URL, Client: srv.Client()}
	if _, err := p.Lookup(context.Background(), Query{ISBN: "1"}); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestApplyResult(t *testing.T) {
	doc := document.New()
	doc.Metadata.Title = "Old"
	doc.Metadata.Language = "en"

	ApplyResult(doc, Result{Title: "New", Authors: []string{"A"}})
	if doc.Metadata.Title != "New" {
		t.Errorf("title = %q", doc.Metadata.Title)
	}
	if doc.Metadata.Language != "en" {
		t.Errorf("unrelated field changed: %q", doc.Metadata.Language)
	}
}
