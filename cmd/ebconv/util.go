package main

import (
	"io"
	"os"

	"ebconv/internal/converter"
	"ebconv/internal/detect"
	"ebconv/internal/document"
)

// loadDocument detects the format of the file at path and reads it.
func loadDocument(path string) (*document.Document, detect.Format, error) {
	result, err := detect.DetectFile(path)
	if err != nil {
		return nil, detect.FormatUnknown, err
	}
	doc, err := converter.ReadDocument(path, result.Format, converter.ReadOptions{
		Security: cfg.Limits(),
		ParseTOC: true,
	}, nil)
	if err != nil {
		return nil, result.Format, err
	}
	return doc, result.Format, nil
}

// saveDocument writes the document back in the given format.
func saveDocument(doc *document.Document, path string, format detect.Format) error {
	opts := converter.WriteOptions{EpubVersion: doc.EpubVersion}
	return converter.WriteDocument(doc, path, format, opts, nil)
}

// moveFile renames a file, copying across filesystems if needed.
func moveFile(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(from)
}
