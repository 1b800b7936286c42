// Package cover extracts, replaces, and thumbnails a document's cover image.
package cover

import (
	"bytes"
	"errors"
	"image/jpeg"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"ebconv/internal/document"
)

// ErrNoCover is returned when the document carries no usable cover image.
var ErrNoCover = errors.New("document has no cover image")

// Extract returns the cover resource: the one named by CoverImageID when it
// resolves to an image, otherwise the first image resource whose filename
// contains "cover", otherwise the first image resource.
func Extract(doc *document.Document) (document.Resource, error) {
	if id := doc.Metadata.CoverImageID; id != "" {
		if res, ok := doc.Resources[id]; ok && isImage(res.MediaType) {
			return res, nil
		}
	}

	var first *document.Resource
	for _, id := range sortedIDs(doc.Resources) {
		res := doc.Resources[id]
		if !isImage(res.MediaType) {
			continue
		}
		if strings.Contains(strings.ToLower(res.Filename), "cover") {
			return res, nil
		}
		if first == nil {
			r := res
			first = &r
		}
	}
	if first != nil {
		return *first, nil
	}
	return document.Resource{}, ErrNoCover
}

// SetCover installs image data as the document cover under the id "cover",
// replacing any previous cover reference.
func SetCover(doc *document.Document, data []byte, mediaType string) {
	doc.Resources["cover"] = document.Resource{
		ID:        "cover",
		MediaType: mediaType,
		Data:      data,
		Filename:  "cover" + extensionFor(mediaType),
	}
	doc.Metadata.CoverImageID = "cover"
}

// Thumbnail decodes the cover, scales it to fit within maxWidth x maxHeight
// preserving aspect ratio, and re-encodes it as JPEG.
func Thumbnail(res document.Resource, maxWidth, maxHeight int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(res.Data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isImage(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".jpg"
	}
}

// sortedIDs makes fallback selection deterministic across map iteration.
func sortedIDs(resources document.ResourceMap) []string {
	ids := make([]string, 0, len(resources))
	for id := range resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
