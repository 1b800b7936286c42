package cover

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"testing"

	"ebconv/internal/document"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestExtractByCoverID(t *testing.T) {
	doc := document.New()
	doc.Metadata.CoverImageID = "the-cover"
	doc.Resources["the-cover"] = document.Resource{
		ID: "the-cover", MediaType: "image/png", Data: []byte("x"),
	}
	doc.Resources["other"] = document.Resource{
		ID: "other", MediaType: "image/png", Data: []byte("y"),
	}

	res, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.ID != "the-cover" {
		t.Errorf("id = %q", res.ID)
	}
}

func TestExtractByFilename(t *testing.T) {
	doc := document.New()
	doc.Resources["a"] = document.Resource{
		ID: "a", MediaType: "image/png", Filename: "img/page1.png",
	}
	doc.Resources["b"] = document.Resource{
		ID: "b", MediaType: "image/jpeg", Filename: "img/Cover.jpg",
	}

	res, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.ID != "b" {
		t.Errorf("id = %q, want filename match", res.ID)
	}
}

func TestExtractFallsBackToFirstImage(t *testing.T) {
	doc := document.New()
	doc.Resources["css"] = document.Resource{ID: "css", MediaType: "text/css"}
	doc.Resources["img"] = document.Resource{ID: "img", MediaType: "image/png"}

	res, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.ID != "img" {
		t.Errorf("id = %q", res.ID)
	}
}

func TestExtractNoCover(t *testing.T) {
	doc := document.New()
	doc.Resources["css"] = document.Resource{ID: "css", MediaType: "text/css"}
	if _, err := Extract(doc); !errors.Is(err, ErrNoCover) {
		t.Fatalf("err = %v", err)
	}
}

func TestSetCover(t *testing.T) {
	doc := document.New()
	SetCover(doc, []byte("data"), "image/png")
	if doc.Metadata.CoverImageID != "cover" {
		t.Errorf("cover id = %q", doc.Metadata.CoverImageID)
	}
	res := doc.Resources["cover"]
	if res.Filename != "cover.png" {
		t.Errorf("filename = %q", res.Filename)
	}
}

func TestThumbnail(t *testing.T) {
	res := document.Resource{
		ID:        "cover",
		MediaType: "image/png",
		Data:      pngBytes(t, 200, 100),
	}
	data, err := Thumbnail(res, 50, 50)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 25 {
		t.Errorf("thumbnail size = %dx%d, want 50x25", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailBadData(t *testing.T) {
	res := document.Resource{ID: "x", MediaType: "image/png", Data: []byte("junk")}
	if _, err := Thumbnail(res, 10, 10); err == nil {
		t.Fatal("expected decode error")
	}
}
