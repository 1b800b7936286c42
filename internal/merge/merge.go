// Package merge concatenates documents into one. Metadata comes from the
// first document; colliding chapter and resource ids are regenerated.
package merge

import (
	"errors"

	"github.com/google/uuid"

	"ebconv/internal/document"
)

// ErrNoDocuments is returned when Merge is called with an empty slice.
var ErrNoDocuments = errors.New("no documents to merge")

// Merge combines the documents in order. The first document's metadata and
// text direction win; chapters and resources from later documents are
// appended, with colliding ids regenerated and references rewritten.
func Merge(docs []*document.Document) (*document.Document, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	out := document.New()
	out.Metadata = docs[0].Metadata
	out.TextDirection = docs[0].TextDirection
	out.EpubVersion = docs[0].EpubVersion

	chapterIDs := make(map[string]bool)
	for _, doc := range docs {
		// Resource ids are remapped first so chapter content can be
		// rewritten while it is copied.
		remap := make(map[string]string)
		for id, res := range doc.Resources {
			newID := id
			if _, taken := out.Resources[id]; taken {
				newID = id + "-" + uuid.NewString()[:8]
				remap[id] = newID
			}
			res.ID = newID
			out.Resources[newID] = res
		}

		for _, ch := range doc.Content {
			if chapterIDs[ch.ID] {
				ch.ID = uuid.NewString()
			}
			chapterIDs[ch.ID] = true
			if len(remap) > 0 {
				ch.Content = remapNodes(ch.Content, remap)
			}
			out.Content = append(out.Content, ch)
		}

		out.TOC = append(out.TOC, doc.TOC...)
	}

	if out.Metadata.CoverImageID != "" {
		if _, ok := out.Resources[out.Metadata.CoverImageID]; !ok {
			out.Metadata.CoverImageID = ""
		}
	}
	return out, nil
}

// remapNodes returns a rewritten copy of the node list. The input documents
// are left untouched; only the fresh copies carry the new resource ids.
func remapNodes(nodes []document.ContentNode, remap map[string]string) []document.ContentNode {
	out := make([]document.ContentNode, len(nodes))
	for i, node := range nodes {
		out[i] = remapNode(node, remap)
	}
	return out
}

func remapNode(node document.ContentNode, remap map[string]string) document.ContentNode {
	switch v := node.(type) {
	case document.Image:
		if newID, ok := remap[v.ResourceID]; ok {
			v.ResourceID = newID
		}
		return v
	case document.List:
		items := make([][]document.ContentNode, len(v.Items))
		for i, item := range v.Items {
			items[i] = remapNodes(item, remap)
		}
		v.Items = items
		return v
	case document.BlockQuote:
		v.Children = remapNodes(v.Children, remap)
		return v
	default:
		return node
	}
}
