package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"ebconv/internal/document"
	"ebconv/internal/progress"
)

const (
	opfDir  = "OEBPS/"
	opfPath = "OEBPS/content.opf"

	writeOperation = "Writing EPUB"
)

// WriteOptions configures one write operation.
type WriteOptions struct {
	// Version selects EPUB2 or EPUB3 output. Unset means EPUB3.
	Version document.EpubVersion
}

// WriteError reports a failed serialization. Writer failures are always
// fatal; a half-written EPUB is categorically invalid.
type WriteError struct {
	Detail string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed for format EPUB: %s", e.Detail)
}

// Write serializes a document into an EPUB archive. The mimetype entry is
// written first and stored uncompressed, as the EPUB container spec requires;
// all other entries are deflated.
func Write(doc *document.Document, w io.Writer, opts WriteOptions, ph progress.Handler) error {
	epub3 := opts.Version != document.EpubVersion2

	zw := zip.NewWriter(w)

	progress.Emit(ph, writeOperation, 0, 4, "Writing container")

	mt, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return &WriteError{Detail: "mimetype entry: " + err.Error()}
	}
	if _, err := mt.Write([]byte("application/epub+zip")); err != nil {
		return &WriteError{Detail: "mimetype entry: " + err.Error()}
	}

	if err := writeEntry(zw, "META-INF/container.xml", containerXML()); err != nil {
		return err
	}

	progress.Emit(ph, writeOperation, 1, 4, "Writing package document")

	if err := writeEntry(zw, opfPath, buildOPF(doc, epub3)); err != nil {
		return err
	}

	progress.Emit(ph, writeOperation, 2, 4, "Writing chapters")

	for i, chapter := range doc.Content {
		name := fmt.Sprintf("%schapter%d.xhtml", opfDir, i+1)
		if err := writeEntry(zw, name, buildChapterXHTML(&chapter)); err != nil {
			return err
		}
	}

	if len(doc.TOC) > 0 {
		if epub3 {
			if err := writeEntry(zw, opfDir+"nav.xhtml", buildNavDocument(doc)); err != nil {
				return err
			}
		} else {
			if err := writeEntry(zw, opfDir+"toc.ncx", buildNCX(doc)); err != nil {
				return err
			}
		}
	}

	progress.Emit(ph, writeOperation, 3, 4, "Writing resources")

	for id, res := range doc.Resources {
		path := opfDir + "resources/" + resourceName(id, res)
		fw, err := zw.Create(path)
		if err != nil {
			return &WriteError{Detail: "resource " + id + ": " + err.Error()}
		}
		if _, err := fw.Write(res.Data); err != nil {
			return &WriteError{Detail: "resource " + id + ": " + err.Error()}
		}
	}

	if err := zw.Close(); err != nil {
		return &WriteError{Detail: "zip finish: " + err.Error()}
	}

	progress.Emit(ph, writeOperation, 4, 4, "Done")
	return nil
}

func writeEntry(zw *zip.Writer, name, content string) error {
	fw, err := zw.Create(name)
	if err != nil {
		return &WriteError{Detail: name + ": " + err.Error()}
	}
	if _, err := io.WriteString(fw, content); err != nil {
		return &WriteError{Detail: name + ": " + err.Error()}
	}
	return nil
}

func containerXML() string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="` + opfPath + `" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`
}

func resourceName(id string, res document.Resource) string {
	if res.Filename != "" {
		return res.Filename
	}
	return id + ".bin"
}

// resourceMediaType returns the declared media type, sniffing the data when
// the document carries none.
func resourceMediaType(res document.Resource) string {
	if res.MediaType != "" {
		return res.MediaType
	}
	return mimetype.Detect(res.Data).String()
}

func buildOPF(doc *document.Document, epub3 bool) string {
	version := "3.0"
	if !epub3 {
		version = "2.0"
	}

	identifier := doc.Metadata.ISBN13
	if identifier == "" {
		identifier = doc.Metadata.ISBN10
	}
	if identifier == "" {
		identifier = "urn:uuid:" + uuid.NewString()
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<package xmlns="http://www.idpf.org/2007/opf" version="` + version + `" unique-identifier="uid"`)
	if doc.TextDirection == document.DirectionRtl {
		b.WriteString(` dir="rtl"`)
	}
	b.WriteString(">\n")

	md := &doc.Metadata
	b.WriteString("  <metadata xmlns:dc=\"http://purl.org/dc/elements/1.1/\">\n")
	if md.Title != "" {
		fmt.Fprintf(&b, "    <dc:title>%s</dc:title>\n", escapeXML(md.Title))
	}
	for _, author := range md.Authors {
		fmt.Fprintf(&b, "    <dc:creator>%s</dc:creator>\n", escapeXML(author))
	}
	if md.Language != "" {
		fmt.Fprintf(&b, "    <dc:language>%s</dc:language>\n", escapeXML(md.Language))
	}
	fmt.Fprintf(&b, "    <dc:identifier id=\"uid\">%s</dc:identifier>\n", escapeXML(identifier))
	if md.Publisher != "" {
		fmt.Fprintf(&b, "    <dc:publisher>%s</dc:publisher>\n", escapeXML(md.Publisher))
	}
	if md.PublishDate != "" {
		fmt.Fprintf(&b, "    <dc:date>%s</dc:date>\n", escapeXML(md.PublishDate))
	}
	if md.Description != "" {
		fmt.Fprintf(&b, "    <dc:description>%s</dc:description>\n", escapeXML(md.Description))
	}
	for _, subject := range md.Subjects {
		fmt.Fprintf(&b, "    <dc:subject>%s</dc:subject>\n", escapeXML(subject))
	}
	if md.Rights != "" {
		fmt.Fprintf(&b, "    <dc:rights>%s</dc:rights>\n", escapeXML(md.Rights))
	}
	if md.CoverImageID != "" {
		fmt.Fprintf(&b, "    <meta name=\"cover\" content=\"%s\"/>\n", escapeXML(md.CoverImageID))
	}
	if epub3 && md.Series != nil {
		fmt.Fprintf(&b, "    <meta property=\"belongs-to-collection\">%s</meta>\n", escapeXML(md.Series.Name))
		if md.Series.Position != 0 {
			fmt.Fprintf(&b, "    <meta property=\"group-position\">%v</meta>\n", md.Series.Position)
		}
	}
	if epub3 {
		for key, value := range md.Custom {
			fmt.Fprintf(&b, "    <meta property=\"%s\">%s</meta>\n", escapeXML(key), escapeXML(value))
		}
	}
	b.WriteString("  </metadata>\n")

	b.WriteString("  <manifest>\n")
	for i := range doc.Content {
		fmt.Fprintf(&b, "    <item id=\"chapter%d\" href=\"chapter%d.xhtml\" media-type=\"application/xhtml+xml\"/>\n", i+1, i+1)
	}
	if len(doc.TOC) > 0 {
		if epub3 {
			b.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
		} else {
			b.WriteString("    <item id=\"ncx\" href=\"toc.ncx\" media-type=\"application/x-dtbncx+xml\"/>\n")
		}
	}
	for id, res := range doc.Resources {
		fmt.Fprintf(&b, "    <item id=\"%s\" href=\"resources/%s\" media-type=\"%s\"/>\n",
			escapeXML(id), escapeXML(resourceName(id, res)), escapeXML(resourceMediaType(res)))
	}
	b.WriteString("  </manifest>\n")

	if !epub3 && len(doc.TOC) > 0 {
		b.WriteString("  <spine toc=\"ncx\">\n")
	} else {
		b.WriteString("  <spine>\n")
	}
	for i := range doc.Content {
		fmt.Fprintf(&b, "    <itemref idref=\"chapter%d\"/>\n", i+1)
	}
	b.WriteString("  </spine>\n")
	b.WriteString("</package>\n")
	return b.String()
}

func buildChapterXHTML(chapter *document.Chapter) string {
	title := chapter.Title
	if title == "" {
		title = "Chapter"
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops"`)
	if chapter.TextDirection != nil {
		fmt.Fprintf(&b, " dir=\"%s\"", chapter.TextDirection.String())
	}
	b.WriteString(">\n<head>\n")
	fmt.Fprintf(&b, "  <title>%s</title>\n", escapeXML(title))
	b.WriteString("</head>\n<body>\n")

	for _, node := range chapter.Content {
		writeContentNode(&b, node)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeContentNode(b *strings.Builder, node document.ContentNode) {
	switch v := node.(type) {
	case document.Paragraph:
		b.WriteString("<p>")
		writeInlines(b, v.Children)
		b.WriteString("</p>\n")
	case document.Heading:
		level := v.Level
		if level < 1 || level > 6 {
			level = 1
		}
		fmt.Fprintf(b, "<h%d>", level)
		writeInlines(b, v.Children)
		fmt.Fprintf(b, "</h%d>\n", level)
	case document.List:
		tag := "ul"
		if v.Ordered {
			tag = "ol"
		}
		fmt.Fprintf(b, "<%s>\n", tag)
		for _, item := range v.Items {
			b.WriteString("<li>")
			for _, sub := range item {
				writeContentNode(b, sub)
			}
			b.WriteString("</li>\n")
		}
		fmt.Fprintf(b, "</%s>\n", tag)
	case document.Table:
		b.WriteString("<table>\n<thead><tr>")
		for _, cell := range v.Headers {
			b.WriteString("<th>")
			writeInlines(b, cell)
			b.WriteString("</th>")
		}
		b.WriteString("</tr></thead>\n<tbody>\n")
		for _, row := range v.Rows {
			b.WriteString("<tr>")
			for _, cell := range row {
				b.WriteString("<td>")
				writeInlines(b, cell)
				b.WriteString("</td>")
			}
			b.WriteString("</tr>\n")
		}
		b.WriteString("</tbody></table>\n")
	case document.BlockQuote:
		b.WriteString("<blockquote>\n")
		for _, c := range v.Children {
			writeContentNode(b, c)
		}
		b.WriteString("</blockquote>\n")
	case document.CodeBlock:
		fmt.Fprintf(b, "<pre><code>%s</code></pre>\n", escapeXML(v.Code))
	case document.Image:
		fmt.Fprintf(b, "<img src=\"resources/%s\" alt=\"%s\"/>\n",
			strings.ReplaceAll(v.ResourceID, `"`, "%22"), escapeXML(v.AltText))
	case document.HorizontalRule:
		b.WriteString("<hr/>\n")
	case document.RawHTML:
		b.WriteString(string(v))
	}
}

func writeInlines(b *strings.Builder, nodes []document.InlineNode) {
	for _, n := range nodes {
		writeInline(b, n)
	}
}

func writeInline(b *strings.Builder, node document.InlineNode) {
	switch v := node.(type) {
	case document.Text:
		b.WriteString(escapeXML(string(v)))
	case document.Emphasis:
		b.WriteString("<em>")
		writeInlines(b, v.Children)
		b.WriteString("</em>")
	case document.Strong:
		b.WriteString("<strong>")
		writeInlines(b, v.Children)
		b.WriteString("</strong>")
	case document.Code:
		fmt.Fprintf(b, "<code>%s</code>", escapeXML(string(v)))
	case document.Link:
		fmt.Fprintf(b, "<a href=\"%s\">", escapeXML(v.Href))
		writeInlines(b, v.Children)
		b.WriteString("</a>")
	case document.Superscript:
		b.WriteString("<sup>")
		writeInlines(b, v.Children)
		b.WriteString("</sup>")
	case document.Subscript:
		b.WriteString("<sub>")
		writeInlines(b, v.Children)
		b.WriteString("</sub>")
	case document.Ruby:
		fmt.Fprintf(b, "<ruby>%s<rt>%s</rt></ruby>", escapeXML(v.Base), escapeXML(v.Annotation))
	case document.LineBreak:
		b.WriteString("<br/>")
	}
}

func buildNavDocument(doc *document.Document) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">` + "\n")
	b.WriteString("<head>\n  <title>Table of Contents</title>\n</head>\n<body>\n")
	b.WriteString(`<nav epub:type="toc" role="doc-toc">` + "\n")
	writeNavList(&b, doc.TOC)
	b.WriteString("</nav>\n</body>\n</html>\n")
	return b.String()
}

func writeNavList(b *strings.Builder, entries []document.TocEntry) {
	b.WriteString("<ol>\n")
	for _, entry := range entries {
		fmt.Fprintf(b, "<li><a href=\"%s\">%s</a>", escapeXML(entry.Href), escapeXML(entry.Title))
		if len(entry.Children) > 0 {
			writeNavList(b, entry.Children)
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n")
}

func buildNCX(doc *document.Document) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">` + "\n")
	b.WriteString("  <head/>\n")
	fmt.Fprintf(&b, "  <docTitle><text>%s</text></docTitle>\n", escapeXML(doc.Metadata.Title))
	b.WriteString("  <navMap>\n")
	order := 1
	writeNavPoints(&b, doc.TOC, &order)
	b.WriteString("  </navMap>\n</ncx>\n")
	return b.String()
}

func writeNavPoints(b *strings.Builder, entries []document.TocEntry, order *int) {
	for _, entry := range entries {
		fmt.Fprintf(b, "<navPoint id=\"navpoint-%d\" playOrder=\"%d\">\n", *order, *order)
		*order++
		fmt.Fprintf(b, "<navLabel><text>%s</text></navLabel>\n", escapeXML(entry.Title))
		fmt.Fprintf(b, "<content src=\"%s\"/>\n", escapeXML(entry.Href))
		writeNavPoints(b, entry.Children, order)
		b.WriteString("</navPoint>\n")
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
