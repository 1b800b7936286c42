package epub

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"ebconv/internal/document"
	"ebconv/internal/log"
)

// parseTOC loads the table of contents, preferring the EPUB3 NAV document and
// falling back to the EPUB2 NCX. A missing or unparseable TOC yields nil; it
// never fails the read.
func (rd *reader) parseTOC(opf *opfData, opfDir string) []document.TocEntry {
	if opf.navHref != "" {
		if content, err := rd.readEntryByName(opfDir + opf.navHref); err == nil {
			if entries := parseNavDocument(content); len(entries) > 0 {
				return entries
			}
		} else {
			log.Warn("skipping NAV document", zap.Error(err))
		}
	}

	if opf.tocID != "" {
		if item, ok := opf.manifest[opf.tocID]; ok {
			if content, err := rd.readEntryByName(opfDir + item.href); err == nil {
				return parseNCX(content)
			} else {
				log.Warn("skipping NCX document", zap.Error(err))
			}
		}
	}

	return nil
}

// parseNavDocument extracts TOC entries from an EPUB3 NAV document: the first
// <nav> marked as a toc (epub:type or role), whose first <ol> is walked
// recursively.
func parseNavDocument(content []byte) []document.TocEntry {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil
	}

	navs := doc.Find("nav")
	nav := navs.FilterFunction(func(_ int, s *goquery.Selection) bool {
		if t, _ := s.Attr("epub:type"); t == "toc" {
			return true
		}
		if r, _ := s.Attr("role"); r == "doc-toc" {
			return true
		}
		return false
	}).First()
	if nav.Length() == 0 {
		nav = navs.First()
	}
	if nav.Length() == 0 {
		return nil
	}

	ol := nav.Find("ol").First()
	if ol.Length() == 0 {
		return nil
	}
	return parseNavList(ol)
}

func parseNavList(ol *goquery.Selection) []document.TocEntry {
	var entries []document.TocEntry
	ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		if a.Length() == 0 {
			return
		}
		title := strings.TrimSpace(a.Text())
		if title == "" {
			return
		}
		href, _ := a.Attr("href")

		entry := document.TocEntry{Title: title, Href: href}
		if nested := li.Find("ol").First(); nested.Length() > 0 {
			entry.Children = parseNavList(nested)
		}
		entries = append(entries, entry)
	})
	return entries
}

// parseNCX extracts TOC entries from an EPUB2 NCX document. Each navPoint
// pushes a children accumulator; closing it pops and attaches to its parent.
func parseNCX(content []byte) []document.TocEntry {
	type frame struct {
		title    string
		href     string
		children []document.TocEntry
	}

	dec := xml.NewDecoder(bytes.NewReader(content))
	root := &frame{}
	stack := []*frame{root}
	inText := false
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "navPoint":
				stack = append(stack, &frame{})
			case "text":
				inText = true
				text.Reset()
			case "content":
				for _, attr := range t.Attr {
					if attr.Name.Local == "src" {
						stack[len(stack)-1].href = attr.Value
					}
				}
			}

		case xml.CharData:
			if inText {
				text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "text":
				inText = false
				if top := stack[len(stack)-1]; top.title == "" {
					top.title = strings.TrimSpace(text.String())
				}
			case "navPoint":
				if len(stack) < 2 {
					break
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, document.TocEntry{
					Title:    top.title,
					Href:     top.href,
					Children: top.children,
				})
			}
		}
	}

	return root.children
}
