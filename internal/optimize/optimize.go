// Package optimize shrinks a document by dropping unreferenced resources and
// collapsing byte-identical ones.
package optimize

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"ebconv/internal/document"
)

// Report summarizes what an optimization pass removed.
type Report struct {
	RemovedUnreferenced int
	CollapsedDuplicates int
	BytesSaved          uint64
}

// Optimize rewrites the document in place. Resources referenced by no image
// node, cover, or stylesheet use are dropped; resources with identical bytes
// are collapsed onto one id and references rewritten.
func Optimize(doc *document.Document) Report {
	var report Report

	referenced := referencedIDs(doc)
	for id, res := range doc.Resources {
		// Stylesheets are reachable from chapter markup the IR does not
		// model, so they are always kept.
		if res.MediaType == "text/css" {
			continue
		}
		if !referenced[id] {
			report.RemovedUnreferenced++
			report.BytesSaved += uint64(len(res.Data))
			delete(doc.Resources, id)
		}
	}

	byHash := make(map[uint64]string)
	remap := make(map[string]string)
	for _, id := range sortedIDs(doc.Resources) {
		res := doc.Resources[id]
		h := xxhash.Sum64(res.Data)
		if keep, ok := byHash[h]; ok {
			remap[id] = keep
			report.CollapsedDuplicates++
			report.BytesSaved += uint64(len(res.Data))
			delete(doc.Resources, id)
			continue
		}
		byHash[h] = id
	}

	if len(remap) > 0 {
		for i := range doc.Content {
			ch := &doc.Content[i]
			for j, node := range ch.Content {
				ch.Content[j] = remapNode(node, remap)
			}
		}
		if newID, ok := remap[doc.Metadata.CoverImageID]; ok {
			doc.Metadata.CoverImageID = newID
		}
	}

	return report
}

func referencedIDs(doc *document.Document) map[string]bool {
	ids := make(map[string]bool)
	if doc.Metadata.CoverImageID != "" {
		ids[doc.Metadata.CoverImageID] = true
	}
	var walk func(node document.ContentNode)
	walk = func(node document.ContentNode) {
		switch v := node.(type) {
		case document.Image:
			ids[v.ResourceID] = true
		case document.List:
			for _, item := range v.Items {
				for _, sub := range item {
					walk(sub)
				}
			}
		case document.BlockQuote:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	for _, ch := range doc.Content {
		for _, node := range ch.Content {
			walk(node)
		}
	}
	return ids
}

func remapNode(node document.ContentNode, remap map[string]string) document.ContentNode {
	switch v := node.(type) {
	case document.Image:
		if newID, ok := remap[v.ResourceID]; ok {
			v.ResourceID = newID
		}
		return v
	case document.List:
		for i, item := range v.Items {
			for j, sub := range item {
				v.Items[i][j] = remapNode(sub, remap)
			}
		}
		return v
	case document.BlockQuote:
		for i, c := range v.Children {
			v.Children[i] = remapNode(c, remap)
		}
		return v
	default:
		return node
	}
}

func sortedIDs(resources document.ResourceMap) []string {
	ids := make([]string, 0, len(resources))
	for id := range resources {
		ids = append(ids, id)
	}
	// Deterministic collapse winner regardless of map order.
	sort.Strings(ids)
	return ids
}
