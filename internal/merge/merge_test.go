package merge

import (
	"errors"
	"testing"

	"ebconv/internal/document"
)

func docWith(title, chapterID string, resIDs ...string) *document.Document {
	doc := document.New()
	doc.Metadata.Title = title
	var nodes []document.ContentNode
	for _, id := range resIDs {
		doc.Resources[id] = document.Resource{ID: id, MediaType: "image/png", Data: []byte(id)}
		nodes = append(nodes, document.Image{ResourceID: id})
	}
	if nodes == nil {
		nodes = []document.ContentNode{
			document.Paragraph{Children: []document.InlineNode{document.Text("x")}},
		}
	}
	doc.Content = []document.Chapter{{ID: chapterID, Content: nodes}}
	return doc
}

func TestMergeEmpty(t *testing.T) {
	if _, err := Merge(nil); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("err = %v", err)
	}
}

func TestMergeKeepsFirstMetadata(t *testing.T) {
	out, err := Merge([]*document.Document{
		docWith("First", "c1"),
		docWith("Second", "c2"),
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if out.Metadata.Title != "First" {
		t.Errorf("title = %q", out.Metadata.Title)
	}
	if len(out.Content) != 2 {
		t.Errorf("chapters = %d", len(out.Content))
	}
}

func TestMergeRegeneratesCollidingChapterIDs(t *testing.T) {
	out, err := Merge([]*document.Document{
		docWith("A", "c1"),
		docWith("B", "c1"),
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if out.Content[0].ID == out.Content[1].ID {
		t.Errorf("chapter ids collide: %q", out.Content[0].ID)
	}
}

func TestMergeRemapsCollidingResources(t *testing.T) {
	a := docWith("A", "c1", "img")
	b := docWith("B", "c2", "img")
	b.Resources["img"] = document.Resource{ID: "img", MediaType: "image/png", Data: []byte("other")}

	out, err := Merge([]*document.Document{a, b})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(out.Resources) != 2 {
		t.Fatalf("resources = %d, want both kept", len(out.Resources))
	}

	img := out.Content[1].Content[0].(document.Image)
	res, ok := out.Resources[img.ResourceID]
	if !ok {
		t.Fatalf("second chapter image points at missing resource %q", img.ResourceID)
	}
	if string(res.Data) != "other" {
		t.Errorf("remapped image resolves to wrong data %q", res.Data)
	}
}

func TestMergeLeavesInputsUntouched(t *testing.T) {
	a := docWith("A", "c1", "img")
	b := docWith("B", "c2", "img")
	b.Content[0].Content = append(b.Content[0].Content,
		document.List{Items: [][]document.ContentNode{
			{document.Image{ResourceID: "img"}},
		}},
		document.BlockQuote{Children: []document.ContentNode{
			document.Image{ResourceID: "img"},
		}},
	)

	if _, err := Merge([]*document.Document{a, b}); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if got := b.Content[0].Content[0].(document.Image).ResourceID; got != "img" {
		t.Errorf("input image id rewritten to %q", got)
	}
	list := b.Content[0].Content[1].(document.List)
	if got := list.Items[0][0].(document.Image).ResourceID; got != "img" {
		t.Errorf("input list image id rewritten to %q", got)
	}
	quote := b.Content[0].Content[2].(document.BlockQuote)
	if got := quote.Children[0].(document.Image).ResourceID; got != "img" {
		t.Errorf("input blockquote image id rewritten to %q", got)
	}
}
