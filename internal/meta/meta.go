// Package meta exposes document metadata fields by name for the CLI's
// get/set/strip operations.
package meta

import (
	"fmt"
	"strconv"
	"strings"

	"ebconv/internal/document"
)

// Fields lists the addressable metadata field names.
var Fields = []string{
	"title", "subtitle", "author", "language", "publisher", "date",
	"isbn10", "isbn13", "description", "series", "series-position", "rights",
}

// Get returns the named field rendered as a string. Multi-valued fields are
// joined with "; ".
func Get(doc *document.Document, field string) (string, error) {
	md := &doc.Metadata
	switch strings.ToLower(field) {
	case "title":
		return md.Title, nil
	case "subtitle":
		return md.Subtitle, nil
	case "author":
		return strings.Join(md.Authors, "; "), nil
	case "language":
		return md.Language, nil
	case "publisher":
		return md.Publisher, nil
	case "date":
		return md.PublishDate, nil
	case "isbn10":
		return md.ISBN10, nil
	case "isbn13":
		return md.ISBN13, nil
	case "description":
		return md.Description, nil
	case "series":
		if md.Series == nil {
			return "", nil
		}
		return md.Series.Name, nil
	case "series-position":
		if md.Series == nil {
			return "", nil
		}
		return strconv.FormatFloat(md.Series.Position, 'f', -1, 64), nil
	case "rights":
		return md.Rights, nil
	default:
		return "", fmt.Errorf("unknown metadata field %q (known: %s)",
			field, strings.Join(Fields, ", "))
	}
}

// Set assigns the named field from a string value. The author field accepts
// multiple authors separated by ";".
func Set(doc *document.Document, field, value string) error {
	md := &doc.Metadata
	switch strings.ToLower(field) {
	case "title":
		md.Title = value
	case "subtitle":
		md.Subtitle = value
	case "author":
		md.Authors = md.Authors[:0]
		for _, a := range strings.Split(value, ";") {
			if a = strings.TrimSpace(a); a != "" {
				md.Authors = append(md.Authors, a)
			}
		}
	case "language":
		md.Language = value
	case "publisher":
		md.Publisher = value
	case "date":
		md.PublishDate = value
	case "isbn10":
		md.ISBN10 = value
	case "isbn13":
		md.ISBN13 = value
	case "description":
		md.Description = value
	case "series":
		if md.Series == nil {
			md.Series = &document.SeriesInfo{}
		}
		md.Series.Name = value
	case "series-position":
		pos, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("series-position %q is not a number", value)
		}
		if md.Series == nil {
			md.Series = &document.SeriesInfo{}
		}
		md.Series.Position = pos
	case "rights":
		md.Rights = value
	default:
		return fmt.Errorf("unknown metadata field %q (known: %s)",
			field, strings.Join(Fields, ", "))
	}
	return nil
}

// Strip clears the named fields, or all addressable fields when none are
// given. The custom map is cleared only on a full strip.
func Strip(doc *document.Document, fields ...string) error {
	if len(fields) == 0 {
		doc.Metadata = document.Metadata{
			CoverImageID: doc.Metadata.CoverImageID,
		}
		return nil
	}
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "series", "series-position":
			doc.Metadata.Series = nil
		case "author":
			doc.Metadata.Authors = nil
		default:
			if err := Set(doc, f, ""); err != nil {
				return err
			}
		}
	}
	return nil
}
