package epub

import "testing"

func TestParseNavDocument(t *testing.T) {
	content := []byte(`<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body>
<nav epub:type="landmarks"><ol><li><a href="cover.xhtml">Cover</a></li></ol></nav>
<nav epub:type="toc">
  <ol>
    <li><a href="ch1.xhtml">Chapter 1</a>
      <ol>
        <li><a href="ch1.xhtml#s1">Section 1.1</a></li>
      </ol>
    </li>
    <li><a href="ch2.xhtml">Chapter 2</a></li>
  </ol>
</nav>
</body>
</html>`)

	entries := parseNavDocument(content)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Title != "Chapter 1" || entries[0].Href != "ch1.xhtml" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if len(entries[0].Children) != 1 || entries[0].Children[0].Title != "Section 1.1" {
		t.Errorf("children = %+v", entries[0].Children)
	}
	if entries[1].Title != "Chapter 2" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestParseNavDocumentFallsBackToFirstNav(t *testing.T) {
	content := []byte(`<html><body>
<nav><ol><li><a href="a.xhtml">A</a></li></ol></nav>
</body></html>`)
	entries := parseNavDocument(content)
	if len(entries) != 1 || entries[0].Title != "A" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestParseNavDocumentSkipsEmptyTitles(t *testing.T) {
	content := []byte(`<html><body><nav epub:type="toc"><ol>
<li><a href="a.xhtml">   </a></li>
<li><a href="b.xhtml">B</a></li>
</ol></nav></body></html>`)
	entries := parseNavDocument(content)
	if len(entries) != 1 || entries[0].Title != "B" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestParseNCX(t *testing.T) {
	content := []byte(`<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head/>
  <docTitle><text>Book</text></docTitle>
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>Chapter 1</text></navLabel>
      <content src="ch1.xhtml"/>
      <navPoint id="n2" playOrder="2">
        <navLabel><text>Section 1.1</text></navLabel>
        <content src="ch1.xhtml#s1"/>
      </navPoint>
    </navPoint>
    <navPoint id="n3" playOrder="3">
      <navLabel><text>Chapter 2</text></navLabel>
      <content src="ch2.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`)

	entries := parseNCX(content)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Title != "Chapter 1" || entries[0].Href != "ch1.xhtml" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if len(entries[0].Children) != 1 || entries[0].Children[0].Href != "ch1.xhtml#s1" {
		t.Errorf("children = %+v", entries[0].Children)
	}
}

func TestParseNCXEmpty(t *testing.T) {
	if entries := parseNCX([]byte(`<ncx><navMap/></ncx>`)); entries != nil {
		t.Fatalf("entries = %+v, want nil", entries)
	}
}
