package epub

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"ebconv/internal/document"
)

// opfData is the result of one forward scan over the package document.
type opfData struct {
	metadata      document.Metadata
	manifest      map[string]manifestItem
	spine         []string
	version       document.EpubVersion
	textDirection document.TextDirection
	// tocID names the NCX manifest item (EPUB2, spine toc attribute).
	tocID string
	// navHref is the EPUB3 navigation document href (manifest properties
	// containing "nav").
	navHref string
}

type manifestItem struct {
	href       string
	mediaType  string
	properties string
}

// Metadata leaf elements captured while inside <metadata>.
var metadataLeaves = map[string]bool{
	"title": true, "creator": true, "language": true, "publisher": true,
	"date": true, "description": true, "subject": true, "identifier": true,
	"rights": true,
}

// parseOPF runs a single forward scan over the OPF package document,
// accumulating metadata leaves, the manifest, and the spine.
func parseOPF(content []byte) (*opfData, error) {
	opf := &opfData{
		manifest: make(map[string]manifestItem),
	}

	dec := xml.NewDecoder(bytes.NewReader(content))
	inMetadata := false
	currentElement := ""
	var currentText strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedError{Detail: "failed to parse OPF: " + err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "package":
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "version":
						if strings.HasPrefix(attr.Value, "2") {
							opf.version = document.EpubVersion2
						} else if strings.HasPrefix(attr.Value, "3") {
							opf.version = document.EpubVersion3
						}
					case "dir":
						switch strings.ToLower(attr.Value) {
						case "rtl":
							opf.textDirection = document.DirectionRtl
						case "ltr":
							opf.textDirection = document.DirectionLtr
						default:
							opf.textDirection = document.DirectionAuto
						}
					}
				}
			case name == "metadata":
				inMetadata = true
			case inMetadata && metadataLeaves[name]:
				currentElement = name
				currentText.Reset()
			case inMetadata && name == "meta":
				property, content := "", ""
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "property":
						property = attr.Value
					case "content":
						content = attr.Value
					case "name":
						// EPUB2 cover form: <meta name="cover" content="id"/>
						if attr.Value == "cover" {
							property = "cover"
						}
					}
				}
				if property == "cover" && content != "" {
					opf.metadata.CoverImageID = content
				} else if property != "" {
					if content != "" {
						opf.commitMeta(property, content)
					} else {
						currentElement = "meta:" + property
						currentText.Reset()
					}
				}
			case name == "item":
				var id string
				var item manifestItem
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "id":
						id = attr.Value
					case "href":
						item.href = attr.Value
					case "media-type":
						item.mediaType = attr.Value
					case "properties":
						item.properties = attr.Value
					}
				}
				if strings.Contains(item.properties, "nav") {
					opf.navHref = item.href
				}
				if id != "" {
					opf.manifest[id] = item
				}
			case name == "spine":
				for _, attr := range t.Attr {
					if attr.Name.Local == "toc" {
						opf.tocID = attr.Value
					}
				}
			case name == "itemref":
				for _, attr := range t.Attr {
					if attr.Name.Local == "idref" {
						opf.spine = append(opf.spine, attr.Value)
					}
				}
			}

		case xml.CharData:
			if currentElement != "" {
				currentText.Write(t)
			}

		case xml.EndElement:
			if t.Name.Local == "metadata" {
				inMetadata = false
			}
			if currentElement == "" {
				break
			}
			text := strings.TrimSpace(currentText.String())
			if text != "" {
				if prop, ok := strings.CutPrefix(currentElement, "meta:"); ok {
					opf.commitMeta(prop, text)
				} else {
					opf.commitLeaf(currentElement, text)
				}
			}
			currentElement = ""
			currentText.Reset()
		}
	}

	return opf, nil
}

// commitLeaf records the accumulated text of a Dublin Core leaf element.
func (opf *opfData) commitLeaf(element, text string) {
	md := &opf.metadata
	switch element {
	case "title":
		md.Title = text
	case "creator":
		md.Authors = append(md.Authors, text)
	case "language":
		md.Language = text
	case "publisher":
		md.Publisher = text
	case "date":
		md.PublishDate = text
	case "description":
		md.Description = text
	case "subject":
		md.Subjects = append(md.Subjects, text)
	case "rights":
		md.Rights = text
	case "identifier":
		classifyISBN(md, text)
	}
}

// commitMeta records an EPUB3 meta property value.
func (opf *opfData) commitMeta(property, value string) {
	md := &opf.metadata
	switch property {
	case "belongs-to-collection":
		if md.Series == nil {
			md.Series = &document.SeriesInfo{Name: value}
		}
	case "group-position":
		if pos, err := strconv.ParseFloat(value, 64); err == nil && md.Series != nil {
			md.Series.Position = pos
		}
	case "cover":
		md.CoverImageID = value
	default:
		md.SetCustom(property, value)
	}
}

// classifyISBN extracts ISBN-shaped digit/X runs from a dc:identifier value
// and records them as ISBN-10 or ISBN-13.
func classifyISBN(md *document.Metadata, text string) {
	var digits strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
			digits.WriteRune(r)
		}
	}
	switch digits.Len() {
	case 13:
		md.ISBN13 = digits.String()
	case 10:
		md.ISBN10 = digits.String()
	}
}
