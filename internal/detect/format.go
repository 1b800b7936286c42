package detect

import "strings"

// Format identifies an ebook or document format. The set is closed; readers
// and writers dispatch on it.
type Format int

const (
	FormatUnknown Format = iota
	FormatEpub
	FormatPdf
	FormatMobi
	FormatAzw3
	FormatHTML
	FormatMarkdown
	FormatPlainText
	FormatFb2
	FormatDocx
	FormatCbz
	FormatCbr
	FormatSsml
)

// Extension returns the canonical file extension without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatEpub:
		return "epub"
	case FormatPdf:
		return "pdf"
	case FormatMobi:
		return "mobi"
	case FormatAzw3:
		return "azw3"
	case FormatHTML:
		return "html"
	case FormatMarkdown:
		return "md"
	case FormatPlainText:
		return "txt"
	case FormatFb2:
		return "fb2"
	case FormatDocx:
		return "docx"
	case FormatCbz:
		return "cbz"
	case FormatCbr:
		return "cbr"
	case FormatSsml:
		return "ssml"
	default:
		return "bin"
	}
}

// MimeType returns the canonical MIME type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatEpub:
		return "application/epub+zip"
	case FormatPdf:
		return "application/pdf"
	case FormatMobi:
		return "application/x-mobipocket-ebook"
	case FormatAzw3:
		return "application/vnd.amazon.ebook"
	case FormatHTML:
		return "text/html"
	case FormatMarkdown:
		return "text/markdown"
	case FormatPlainText:
		return "text/plain"
	case FormatFb2:
		return "application/x-fictionbook+xml"
	case FormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatCbz:
		return "application/vnd.comicbook+zip"
	case FormatCbr:
		return "application/vnd.comicbook-rar"
	case FormatSsml:
		return "application/ssml+xml"
	default:
		return "application/octet-stream"
	}
}

// String renders the format as its uppercased extension, e.g. "EPUB".
func (f Format) String() string {
	if f == FormatUnknown {
		return "UNKNOWN"
	}
	return strings.ToUpper(f.Extension())
}

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "epub":
		return FormatEpub, true
	case "txt", "text":
		return FormatPlainText, true
	case "html", "htm":
		return FormatHTML, true
	case "md", "markdown":
		return FormatMarkdown, true
	case "ssml":
		return FormatSsml, true
	case "pdf":
		return FormatPdf, true
	case "mobi":
		return FormatMobi, true
	case "azw3":
		return FormatAzw3, true
	case "fb2":
		return FormatFb2, true
	default:
		return FormatUnknown, false
	}
}
