package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"ebconv/internal/security"
)

type zipEntry struct {
	name string
	data string
}

func buildZip(t *testing.T, entries []zipEntry) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.data)); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

const testContainerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Jane Doe</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="uid">urn:isbn:9781234567897</dc:identifier>
  </metadata>
  <manifest>
    <item id="ch1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
  </spine>
</package>`

const testChapter = `<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter One</title></head>
<body>
<h1>Chapter One</h1>
<p>Hello world.</p>
</body>
</html>`

func minimalEpub(t *testing.T, extra ...zipEntry) *bytes.Reader {
	t.Helper()
	entries := []zipEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/content.opf", testOPF},
		{"OEBPS/chapter1.xhtml", testChapter},
	}
	return buildZip(t, append(entries, extra...))
}

func TestReadMinimalEpub(t *testing.T) {
	r := minimalEpub(t)
	doc, err := Read(r, r.Size(), DefaultReadOptions(), nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Metadata.Title != "Test Book" {
		t.Errorf("title = %q, want %q", doc.Metadata.Title, "Test Book")
	}
	if len(doc.Metadata.Authors) != 1 || doc.Metadata.Authors[0] != "Jane Doe" {
		t.Errorf("authors = %v", doc.Metadata.Authors)
	}
	if doc.Metadata.ISBN13 != "9781234567897" {
		t.Errorf("isbn13 = %q", doc.Metadata.ISBN13)
	}
	if len(doc.Content) != 1 {
		t.Fatalf("chapters = %d, want 1", len(doc.Content))
	}
	if doc.Content[0].Title != "Chapter One" {
		t.Errorf("chapter title = %q", doc.Content[0].Title)
	}
	if doc.EpubVersion.String() != "3.0" {
		t.Errorf("version = %q", doc.EpubVersion.String())
	}
}

func TestReadNotAZip(t *testing.T) {
	data := []byte("this is not a zip archive")
	_, err := Read(bytes.NewReader(data), int64(len(data)), DefaultReadOptions(), nil)
	var merr *MalformedError
	if !errors.As(err, &merr) {
		t.Fatalf("err = %v, want MalformedError", err)
	}
}

func TestReadMissingContainer(t *testing.T) {
	r := buildZip(t, []zipEntry{{"mimetype", "application/epub+zip"}})
	_, err := Read(r, r.Size(), DefaultReadOptions(), nil)
	var cerr *MissingContentError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want MissingContentError", err)
	}
	if cerr.Name != "META-INF/container.xml" {
		t.Errorf("missing name = %q", cerr.Name)
	}
}

func TestReadDRMAbortsRead(t *testing.T) {
	enc := `<encryption><EncryptedData>
	  <KeyInfo><resource xmlns="http://ns.adobe.com/adept"/></KeyInfo>
	</EncryptedData></encryption>`
	r := minimalEpub(t, zipEntry{"META-INF/encryption.xml", enc})
	_, err := Read(r, r.Size(), DefaultReadOptions(), nil)
	var derr *security.DRMError
	if !errors.As(err, &derr) {
		t.Fatalf("err = %v, want DRMError", err)
	}
	if derr.DRMType != "Adobe DRM" {
		t.Errorf("drm type = %q", derr.DRMType)
	}
}

func TestReadFontObfuscationAllowed(t *testing.T) {
	enc := `<encryption xmlns:enc="http://www.w3.org/2001/04/xmlenc#">
	  <enc:EncryptedData>
	    <enc:EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding"/>
	  </enc:EncryptedData>
	</encryption>`
	r := minimalEpub(t, zipEntry{"META-INF/encryption.xml", enc})
	if _, err := Read(r, r.Size(), DefaultReadOptions(), nil); err != nil {
		t.Fatalf("Read: %v", err)
	}
}

func TestReadSkipsBrokenSpineItem(t *testing.T) {
	opf := strings.Replace(testOPF,
		"<itemref idref=\"ch1\"/>",
		"<itemref idref=\"missing\"/>\n<itemref idref=\"ch1\"/>", 1)
	r := buildZip(t, []zipEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/content.opf", opf},
		{"OEBPS/chapter1.xhtml", testChapter},
	})
	doc, err := Read(r, r.Size(), DefaultReadOptions(), nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc.Content) != 1 {
		t.Errorf("chapters = %d, want 1 (broken item skipped)", len(doc.Content))
	}
}

func TestReadFileCountLimit(t *testing.T) {
	r := minimalEpub(t)
	opts := DefaultReadOptions()
	opts.Limits.MaxFileCount = 2
	_, err := Read(r, r.Size(), opts, nil)
	var ferr *security.FileCountError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want FileCountError", err)
	}
}

func TestReadCompressionRatioLimit(t *testing.T) {
	// A container.xml padded with highly compressible filler trips the ratio
	// check before parsing even begins.
	padded := testContainerXML + "\n<!--" + strings.Repeat(" ", 1<<16) + "-->"
	r := buildZip(t, []zipEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", padded},
		{"OEBPS/content.opf", testOPF},
		{"OEBPS/chapter1.xhtml", testChapter},
	})
	opts := DefaultReadOptions()
	opts.Limits.MaxCompressionRatio = 2
	_, err := Read(r, r.Size(), opts, nil)
	var rerr *security.RatioError
	if !errors.As(err, &rerr) {
		t.Fatalf("err = %v, want RatioError", err)
	}
}

func TestReadLoadsResources(t *testing.T) {
	opf := strings.Replace(testOPF,
		"</manifest>",
		"<item id=\"css\" href=\"style.css\" media-type=\"text/css\"/>\n</manifest>", 1)
	r := buildZip(t, []zipEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/content.opf", opf},
		{"OEBPS/chapter1.xhtml", testChapter},
		{"OEBPS/style.css", "body { margin: 0; }"},
	})
	doc, err := Read(r, r.Size(), DefaultReadOptions(), nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	res, ok := doc.Resources["css"]
	if !ok {
		t.Fatalf("css resource not loaded, have %v", doc.Resources)
	}
	if res.MediaType != "text/css" {
		t.Errorf("media type = %q", res.MediaType)
	}
	if string(res.Data) != "body { margin: 0; }" {
		t.Errorf("data = %q", res.Data)
	}
}
