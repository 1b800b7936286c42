// Package document defines the unified in-memory representation shared by all
// format readers and writers. Every reader produces a Document and every
// writer consumes one; no format-specific state leaks past this package.
package document

// Document is the root aggregate: metadata, table of contents, chapter
// content, and binary resources.
type Document struct {
	Metadata      Metadata
	TOC           []TocEntry
	Content       []Chapter
	Resources     ResourceMap
	TextDirection TextDirection
	EpubVersion   EpubVersion
}

// New returns an empty document with an initialized resource map.
func New() *Document {
	return &Document{
		Resources: make(ResourceMap),
	}
}

// Metadata holds bibliographic information about the document.
type Metadata struct {
	Title        string
	Subtitle     string
	Authors      []string
	Language     string
	Publisher    string
	PublishDate  string
	ISBN10       string
	ISBN13       string
	Description  string
	Subjects     []string
	Series       *SeriesInfo
	CoverImageID string
	PageCount    int
	Rights       string
	Custom       map[string]string
}

// SetCustom records a custom key/value pair, allocating the map on first use.
func (m *Metadata) SetCustom(key, value string) {
	if m.Custom == nil {
		m.Custom = make(map[string]string)
	}
	m.Custom[key] = value
}

// SeriesInfo identifies the series a book belongs to. Position zero means
// the position is unknown.
type SeriesInfo struct {
	Name     string
	Position float64
}

// TocEntry is one node in the table-of-contents tree.
type TocEntry struct {
	Title    string
	Href     string
	Children []TocEntry
}

// Chapter is a single content document. ID must be unique within a Document;
// merge operations regenerate colliding ids.
type Chapter struct {
	ID      string
	Title   string
	Content []ContentNode
	// TextDirection overrides the document direction when non-nil.
	TextDirection *TextDirection
}

// Resource is a binary asset (image, font, stylesheet) owned by the document
// and referenced by id from content nodes and metadata.
type Resource struct {
	ID        string
	MediaType string
	Data      []byte
	// Filename preserves the original archive-relative path, if any.
	Filename string
}

// ResourceMap maps resource ids to resources. Last write wins on duplicate
// ids; duplicate detection is the optimizer's job.
type ResourceMap map[string]Resource

// TextDirection is the base writing direction of document text.
type TextDirection int

const (
	DirectionLtr TextDirection = iota
	DirectionRtl
	DirectionAuto
)

func (d TextDirection) String() string {
	switch d {
	case DirectionRtl:
		return "rtl"
	case DirectionAuto:
		return "auto"
	default:
		return "ltr"
	}
}

// EpubVersion records which EPUB revision a document was read from, if any.
type EpubVersion int

const (
	EpubVersionUnset EpubVersion = iota
	EpubVersion2
	EpubVersion3
)

func (v EpubVersion) String() string {
	switch v {
	case EpubVersion2:
		return "2.0"
	case EpubVersion3:
		return "3.0"
	default:
		return ""
	}
}
