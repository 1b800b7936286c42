// Package detect classifies raw bytes into ebook formats using a strictly
// ordered priority chain: magic bytes, ZIP subformat disambiguation, filename
// extension, and content heuristics.
package detect

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// headerSize is the number of bytes Detect inspects.
const headerSize = 4096

// ErrUnknownFormat is returned when no detection stage yields a match.
var ErrUnknownFormat = errors.New("could not determine format: no signal matched")

// Result is the outcome of a successful detection.
type Result struct {
	Format     Format
	Confidence float64
	MimeType   string
}

func result(f Format, confidence float64) (Result, error) {
	return Result{Format: f, Confidence: confidence, MimeType: f.MimeType()}, nil
}

// Detect classifies the given header bytes (first 4KB of a file) and optional
// filename. Stages run in priority order and the first match wins. Detection
// is a pure function of its inputs.
func Detect(header []byte, filename string) (Result, error) {
	if r, ok := detectMagic(header); ok {
		return r, nil
	}
	if r, ok := detectExtension(filename); ok {
		return r, nil
	}
	if r, ok := detectHeuristics(header); ok {
		return r, nil
	}
	return Result{Format: FormatUnknown}, ErrUnknownFormat
}

// DetectFile reads the first 4KB of the file at path and detects its format.
func DetectFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{Format: FormatUnknown}, err
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Result{Format: FormatUnknown}, err
	}
	return Detect(header[:n], filepath.Base(path))
}

// --- Stage 1: magic bytes ---

func detectMagic(header []byte) (Result, bool) {
	if bytes.HasPrefix(header, []byte("%PDF-")) {
		r, _ := result(FormatPdf, 1.0)
		return r, true
	}

	// Gzip is deliberately not resolved here: identifying the inner format
	// would require decompression. Fall through to extension/heuristics.
	if bytes.HasPrefix(header, []byte{0x1F, 0x8B}) {
		return Result{}, false
	}

	if bytes.HasPrefix(header, []byte("Rar!\x1A\x07")) {
		r, _ := result(FormatCbr, 0.7)
		return r, true
	}

	if bytes.HasPrefix(header, []byte("PK\x03\x04")) {
		if r, ok := detectZipSubformat(header); ok {
			return r, true
		}
		return Result{}, false
	}

	if len(header) >= 68 && bytes.Equal(header[60:68], []byte("BOOKMOBI")) {
		r, _ := result(FormatMobi, 0.95)
		return r, true
	}

	if bytes.HasPrefix(bytes.TrimLeft(header, " \t\r\n\xef\xbb\xbf"), []byte("<?xml")) {
		if bytes.Contains(header, []byte("<FictionBook")) {
			r, _ := result(FormatFb2, 0.95)
			return r, true
		}
		if bytes.Contains(header, []byte("<speak")) && bytes.Contains(header, []byte("xmlns")) {
			r, _ := result(FormatSsml, 0.9)
			return r, true
		}
	}

	lower := bytes.ToLower(header)
	if bytes.Contains(lower, []byte("<!doctype html")) || bytes.Contains(lower, []byte("<html")) {
		r, _ := result(FormatHTML, 0.85)
		return r, true
	}

	return Result{}, false
}

// --- Stage 2: ZIP subformat disambiguation ---

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".avif": true,
}

// detectZipSubformat opens the header bytes as a ZIP archive. The central
// directory may be truncated in a 4KB prefix, in which case this stage yields
// no match and detection falls through.
func detectZipSubformat(header []byte) (Result, bool) {
	zr, err := zip.NewReader(bytes.NewReader(header), int64(len(header)))
	if err != nil {
		return Result{}, false
	}

	var (
		hasContainer    bool
		allImageEntries = len(zr.File) > 0
	)

	for _, f := range zr.File {
		switch f.Name {
		case "mimetype":
			if content, err := readZipEntry(f); err == nil &&
				strings.TrimSpace(string(content)) == "application/epub+zip" {
				r, _ := result(FormatEpub, 1.0)
				return r, true
			}
		case "META-INF/container.xml":
			hasContainer = true
		case "[Content_Types].xml":
			if content, err := readZipEntry(f); err == nil &&
				bytes.Contains(content, []byte("wordprocessingml")) {
				r, _ := result(FormatDocx, 1.0)
				return r, true
			}
		}

		isDir := strings.HasSuffix(f.Name, "/")
		if !isDir && !imageExtensions[strings.ToLower(filepath.Ext(f.Name))] {
			allImageEntries = false
		}
	}

	if hasContainer {
		r, _ := result(FormatEpub, 0.9)
		return r, true
	}
	if allImageEntries {
		r, _ := result(FormatCbz, 0.8)
		return r, true
	}
	return Result{}, false
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// --- Stage 3: filename extension ---

var extensionFormats = map[string]Format{
	".epub":     FormatEpub,
	".pdf":      FormatPdf,
	".mobi":     FormatMobi,
	".prc":      FormatMobi,
	".azw":      FormatAzw3,
	".azw3":     FormatAzw3,
	".kf8":      FormatAzw3,
	".kfx":      FormatAzw3,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".xhtml":    FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".txt":      FormatPlainText,
	".text":     FormatPlainText,
	".fb2":      FormatFb2,
	".docx":     FormatDocx,
	".cbz":      FormatCbz,
	".cbr":      FormatCbr,
	".ssml":     FormatSsml,
}

func detectExtension(filename string) (Result, bool) {
	if filename == "" {
		return Result{}, false
	}
	format, ok := extensionFormats[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return Result{}, false
	}
	r, _ := result(format, 0.6)
	return r, true
}

// --- Stage 4: content heuristics ---

var markdownSignals = []string{"# ", "## ", "](", "```", "**"}

func detectHeuristics(header []byte) (Result, bool) {
	if len(header) == 0 {
		return Result{}, false
	}

	text := string(header)
	score := 0
	for _, sig := range markdownSignals {
		switch sig {
		case "# ", "## ":
			if strings.HasPrefix(text, sig) || strings.Contains(text, "\n"+sig) {
				score++
			}
		default:
			if strings.Contains(text, sig) {
				score++
			}
		}
	}
	if score >= 2 {
		confidence := 0.4 + 0.1*float64(score)
		if confidence > 0.7 {
			confidence = 0.7
		}
		r, _ := result(FormatMarkdown, confidence)
		return r, true
	}

	if utf8.Valid(header) && controlByteDensity(header) < 0.001 {
		r, _ := result(FormatPlainText, 0.3)
		return r, true
	}
	return Result{}, false
}

// controlByteDensity returns the fraction of control bytes, excluding tab,
// newline, and carriage return.
func controlByteDensity(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	control := 0
	for _, b := range data {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			control++
		}
	}
	return float64(control) / float64(len(data))
}
