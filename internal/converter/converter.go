// Package converter orchestrates conversions: detect the input format, read
// it into the document IR, apply transforms, and write the output format.
package converter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"ebconv/internal/detect"
	"ebconv/internal/document"
	"ebconv/internal/epub"
	"ebconv/internal/progress"
	"ebconv/internal/security"
	"ebconv/internal/txt"
)

// ReadFormats lists the formats the converter can read.
var ReadFormats = []detect.Format{detect.FormatEpub, detect.FormatPlainText}

// WriteFormats lists the formats the converter can write.
var WriteFormats = []detect.Format{detect.FormatEpub, detect.FormatPlainText}

// ReadOptions configures the reading half of a conversion.
type ReadOptions struct {
	Security security.Limits
	ParseTOC bool
}

// DefaultReadOptions returns the read options used when the caller supplies
// none.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Security: security.DefaultLimits(),
		ParseTOC: true,
	}
}

// WriteOptions configures the writing half of a conversion.
type WriteOptions struct {
	// EpubVersion selects the EPUB revision when writing EPUB output.
	EpubVersion document.EpubVersion
	// Transforms run in order between read and write. A transform failure
	// aborts the conversion.
	Transforms []Transform
}

// Transform rewrites a document between read and write.
type Transform interface {
	Name() string
	Apply(doc *document.Document) (*document.Document, error)
}

// UnsupportedFormatError reports an input or output format outside the
// supported set.
type UnsupportedFormatError struct {
	Format    detect.Format
	Supported []detect.Format
}

func (e *UnsupportedFormatError) Error() string {
	names := make([]string, len(e.Supported))
	for i, f := range e.Supported {
		names[i] = f.String()
	}
	return fmt.Sprintf("unsupported format %s (supported: %s)",
		e.Format, strings.Join(names, ", "))
}

// TransformError reports a failed transform by name.
type TransformError struct {
	Transform string
	Err       error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s failed: %v", e.Transform, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// ConvertPath converts the file at inPath into outPath. The input format is
// detected from content and filename; the output format is inferred from the
// outPath extension unless outFormat is non-zero.
func ConvertPath(inPath, outPath string, outFormat detect.Format, rOpts ReadOptions, wOpts WriteOptions, ph progress.Handler) error {
	result, err := detect.DetectFile(inPath)
	if err != nil {
		return err
	}

	doc, err := ReadDocument(inPath, result.Format, rOpts, ph)
	if err != nil {
		return err
	}

	for _, tr := range wOpts.Transforms {
		doc, err = tr.Apply(doc)
		if err != nil {
			return &TransformError{Transform: tr.Name(), Err: err}
		}
	}

	if outFormat == detect.FormatUnknown {
		outFormat, err = formatForPath(outPath)
		if err != nil {
			return err
		}
	}
	return WriteDocument(doc, outPath, outFormat, wOpts, ph)
}

// ReadDocument reads the file at path as the given format.
func ReadDocument(path string, format detect.Format, opts ReadOptions, ph progress.Handler) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFrom(f, format, opts, ph)
}

func readFrom(f *os.File, format detect.Format, opts ReadOptions, ph progress.Handler) (*document.Document, error) {
	switch format {
	case detect.FormatEpub:
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return epub.Read(f, info.Size(), epub.ReadOptions{
			Limits:   opts.Security,
			ParseTOC: opts.ParseTOC,
		}, ph)
	case detect.FormatPlainText, detect.FormatMarkdown:
		return txt.Read(f, ph)
	default:
		return nil, &UnsupportedFormatError{Format: format, Supported: ReadFormats}
	}
}

// WriteDocument writes the document to path in the given format. The output
// file is created atomically enough for CLI use: written to a temp file in
// the same directory, then renamed.
func WriteDocument(doc *document.Document, path string, format detect.Format, opts WriteOptions, ph progress.Handler) error {
	tmp, err := os.CreateTemp(dirOf(path), ".ebconv-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := writeTo(doc, tmp, format, opts, ph); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeTo(doc *document.Document, w io.Writer, format detect.Format, opts WriteOptions, ph progress.Handler) error {
	switch format {
	case detect.FormatEpub:
		return epub.Write(doc, w, epub.WriteOptions{Version: opts.EpubVersion}, ph)
	case detect.FormatPlainText:
		return txt.Write(doc, w)
	default:
		return &UnsupportedFormatError{Format: format, Supported: WriteFormats}
	}
}

// formatForPath maps an output filename extension to a writable format.
func formatForPath(path string) (detect.Format, error) {
	ext := ""
	if i := strings.LastIndex(path, "."); i >= 0 {
		ext = strings.ToLower(path[i+1:])
	}
	switch ext {
	case "epub":
		return detect.FormatEpub, nil
	case "txt", "text":
		return detect.FormatPlainText, nil
	default:
		return detect.FormatUnknown, fmt.Errorf("cannot infer output format from %q", path)
	}
}

func dirOf(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[:i+1]
	}
	return "."
}
