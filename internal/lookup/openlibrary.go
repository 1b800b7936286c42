package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrEmptyQuery is returned when a query has no usable fields.
var ErrEmptyQuery = errors.New("lookup query is empty")

const openLibraryBaseURL = "https://openlibrary.org"

// OpenLibrary queries the Open Library search API.
type OpenLibrary struct {
	// Client defaults to a client with a 10s timeout.
	Client *http.Client
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
	// MaxResults caps the number of results returned; 0 means 5.
	MaxResults int
}

func (p *OpenLibrary) Name() string { return "openlibrary" }

type openLibraryResponse struct {
	Docs []struct {
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		ISBN             []string `json:"isbn"`
		Publisher        []string `json:"publisher"`
		FirstPublishYear int      `json:"first_publish_year"`
	} `json:"docs"`
}

// Lookup searches Open Library. ISBN queries search the isbn field; otherwise
// title and author terms are combined.
func (p *OpenLibrary) Lookup(ctx context.Context, q Query) ([]Result, error) {
	params := url.Values{}
	switch {
	case q.ISBN != "":
		params.Set("isbn", q.ISBN)
	case q.Title != "" || q.Author != "":
		if q.Title != "" {
			params.Set("title", q.Title)
		}
		if q.Author != "" {
			params.Set("author", q.Author)
		}
	default:
		return nil, ErrEmptyQuery
	}

	limit := p.MaxResults
	if limit <= 0 {
		limit = 5
	}
	params.Set("limit", strconv.Itoa(limit))

	base := p.BaseURL
	if base == "" {
		base = openLibraryBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		base+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary: unexpected status %s", resp.Status)
	}

	var parsed openLibraryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("openlibrary: decoding response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Docs))
	for _, d := range parsed.Docs {
		r := Result{
			Title:   d.Title,
			Authors: d.AuthorName,
		}
		for _, isbn := range d.ISBN {
			if len(isbn) == 13 {
				r.ISBN13 = isbn
				break
			}
		}
		if len(d.Publisher) > 0 {
			r.Publisher = d.Publisher[0]
		}
		if d.FirstPublishYear > 0 {
			r.PublishDate = strconv.Itoa(d.FirstPublishYear)
		}
		results = append(results, r)
	}
	return results, nil
}
