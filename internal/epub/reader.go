// Package epub parses EPUB2/EPUB3 archives into the document IR and
// serializes the IR back into spec-compliant EPUB archives.
package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"ebconv/internal/document"
	"ebconv/internal/log"
	"ebconv/internal/progress"
	"ebconv/internal/security"
)

const readOperation = "Reading EPUB"

// ReadOptions configures one read operation.
type ReadOptions struct {
	Limits   security.Limits
	ParseTOC bool
}

// DefaultReadOptions returns the options used when the caller supplies none.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Limits:   security.DefaultLimits(),
		ParseTOC: true,
	}
}

// reader carries the per-call parse state: the archive, the active limits,
// the running decompressed-byte total, and the wall-clock deadline.
type reader struct {
	files    map[string]*zip.File
	limits   security.Limits
	total    uint64
	deadline time.Time
}

// Read parses an EPUB archive from a random-access byte source into a
// Document. Archive-level failures (bad ZIP, missing container or OPF, DRM)
// abort the read; a single unreadable spine item or resource is skipped with
// a warning.
func Read(r io.ReaderAt, size int64, opts ReadOptions, ph progress.Handler) (*document.Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &MalformedError{Detail: "invalid ZIP archive: " + err.Error()}
	}

	if err := security.CheckFileCount(uint64(len(zr.File)), opts.Limits); err != nil {
		return nil, err
	}

	rd := &reader{
		files:    make(map[string]*zip.File, len(zr.File)),
		limits:   opts.Limits,
		deadline: time.Now().Add(time.Duration(opts.Limits.MaxParseSeconds) * time.Second),
	}
	for _, f := range zr.File {
		rd.files[normalizePath(f.Name)] = f
	}

	// DRM is categorically unsupported; a positive match aborts the read.
	if enc, ok := rd.files["META-INF/encryption.xml"]; ok {
		data, err := rd.readEntry(enc)
		if err != nil {
			return nil, err
		}
		if err := security.CheckEpubDRM(string(data)); err != nil {
			return nil, err
		}
	}

	progress.Emit(ph, readOperation, 0, 5, "Parsing container")

	opfPath, err := rd.findOPFPath()
	if err != nil {
		return nil, err
	}

	progress.Emit(ph, readOperation, 1, 5, "Parsing OPF package")

	opfDir := ""
	if i := strings.LastIndex(opfPath, "/"); i >= 0 {
		opfDir = opfPath[:i+1]
	}

	opfFile, ok := rd.files[opfPath]
	if !ok {
		return nil, &MissingContentError{Name: opfPath}
	}
	opfContent, err := rd.readEntry(opfFile)
	if err != nil {
		return nil, err
	}
	opf, err := parseOPF(opfContent)
	if err != nil {
		return nil, err
	}

	progress.Emit(ph, readOperation, 2, 5, "Parsing content")

	var chapters []document.Chapter
	for i, idref := range opf.spine {
		item, ok := opf.manifest[idref]
		if !ok {
			log.Warn("spine item not in manifest, skipping", zap.String("idref", idref))
			continue
		}
		content, err := rd.readEntryByName(opfDir + item.href)
		if err != nil {
			log.Warn("skipping spine item",
				zap.String("idref", idref), zap.Error(err))
			continue
		}
		chapters = append(chapters, parseChapterXHTML(content, idref, opts.Limits))
		progress.Emit(ph, readOperation, 2, 5,
			fmt.Sprintf("Chapter %d/%d", i+1, len(opf.spine)))
		if err := rd.checkDeadline(); err != nil {
			return nil, err
		}
	}

	progress.Emit(ph, readOperation, 3, 5, "Loading resources")

	resources := make(document.ResourceMap)
	for id, item := range opf.manifest {
		if !isResourceMediaType(item.mediaType) {
			continue
		}
		data, err := rd.readEntryByName(opfDir + item.href)
		if err != nil {
			log.Warn("skipping resource",
				zap.String("id", id), zap.Error(err))
			continue
		}
		resources[id] = document.Resource{
			ID:        id,
			MediaType: item.mediaType,
			Data:      data,
			Filename:  item.href,
		}
		if err := rd.checkDeadline(); err != nil {
			return nil, err
		}
	}

	progress.Emit(ph, readOperation, 4, 5, "Parsing navigation")

	var toc []document.TocEntry
	if opts.ParseTOC {
		toc = rd.parseTOC(opf, opfDir)
	}

	progress.Emit(ph, readOperation, 5, 5, "Done")

	return &document.Document{
		Metadata:      opf.metadata,
		TOC:           toc,
		Content:       chapters,
		Resources:     resources,
		TextDirection: opf.textDirection,
		EpubVersion:   opf.version,
	}, nil
}

// findOPFPath scans META-INF/container.xml for the rootfile full-path.
func (rd *reader) findOPFPath() (string, error) {
	f, ok := rd.files["META-INF/container.xml"]
	if !ok {
		return "", &MissingContentError{Name: "META-INF/container.xml"}
	}
	content, err := rd.readEntry(f)
	if err != nil {
		return "", err
	}

	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &MalformedError{Detail: "failed to parse container.xml: " + err.Error()}
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "rootfile" {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "full-path" {
				return normalizePath(attr.Value), nil
			}
		}
	}
	return "", &MissingContentError{Name: "rootfile in container.xml"}
}

// readEntryByName resolves a normalized archive path and reads it subject to
// the security checks.
func (rd *reader) readEntryByName(name string) ([]byte, error) {
	f, ok := rd.files[normalizePath(name)]
	if !ok {
		return nil, &MissingContentError{Name: name}
	}
	return rd.readEntry(f)
}

// readEntry reads one archive entry. Path traversal, compression ratio, and
// size ceilings are checked before any content bytes are materialized.
func (rd *reader) readEntry(f *zip.File) ([]byte, error) {
	if err := security.CheckPathTraversal(f.Name); err != nil {
		return nil, err
	}
	if err := security.CheckCompressionRatio(f.CompressedSize64, f.UncompressedSize64, rd.limits); err != nil {
		return nil, err
	}
	if err := security.CheckResourceSize(f.Name, f.UncompressedSize64, rd.limits); err != nil {
		return nil, err
	}
	if err := security.CheckTotalSize(rd.total+f.UncompressedSize64, rd.limits); err != nil {
		return nil, err
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &MalformedError{Detail: "failed to open " + f.Name + ": " + err.Error()}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &MalformedError{Detail: "failed to read " + f.Name + ": " + err.Error()}
	}
	rd.total += uint64(len(data))
	return data, nil
}

func (rd *reader) checkDeadline() error {
	if time.Now().After(rd.deadline) {
		return &security.TimeoutError{Seconds: rd.limits.MaxParseSeconds}
	}
	return nil
}

func normalizePath(p string) string {
	return strings.TrimPrefix(p, "./")
}

func isResourceMediaType(mediaType string) bool {
	switch mediaType {
	case "image/jpeg", "image/png", "image/gif", "image/svg+xml",
		"font/otf", "font/ttf", "font/woff", "font/woff2",
		"application/font-sfnt", "application/x-font-ttf", "application/x-font-opentype",
		"text/css":
		return true
	}
	return false
}
