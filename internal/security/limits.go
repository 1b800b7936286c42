// Package security enforces resource-consumption ceilings and structural
// attack checks on untrusted archive input. The EPUB reader calls these
// guards at every archive-entry boundary.
package security

import (
	"fmt"
	"strings"
)

// Limits configures the ceilings applied while reading untrusted input.
// A Limits value is immutable for the duration of one read operation.
type Limits struct {
	// MaxCompressionRatio is the maximum decompression ratio before an
	// entry is flagged as a zip bomb.
	MaxCompressionRatio uint64
	// MaxFileCount is the maximum number of files allowed in an archive.
	MaxFileCount uint64
	// MaxResourceSizeBytes is the maximum size of a single resource.
	MaxResourceSizeBytes uint64
	// MaxTotalSizeBytes is the maximum total decompressed size.
	MaxTotalSizeBytes uint64
	// MaxNestingDepth is the maximum XML/XHTML element nesting depth.
	MaxNestingDepth int
	// MaxParseSeconds is the wall-clock budget for one read, checked at
	// stage boundaries.
	MaxParseSeconds uint64
}

// DefaultLimits returns the ceilings applied when the user configures none.
func DefaultLimits() Limits {
	return Limits{
		MaxCompressionRatio:  100,
		MaxFileCount:         10_000,
		MaxResourceSizeBytes: 200 * 1024 * 1024,
		MaxTotalSizeBytes:    1024 * 1024 * 1024,
		MaxNestingDepth:      200,
		MaxParseSeconds:      300,
	}
}

// RatioError reports a suspected zip bomb.
type RatioError struct {
	Ratio uint64
	Limit uint64
}

func (e *RatioError) Error() string {
	return fmt.Sprintf("zip bomb detected: decompression ratio %d:1 exceeds limit %d:1", e.Ratio, e.Limit)
}

// TraversalError reports an archive entry path escaping the archive root.
type TraversalError struct {
	Path string
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("path traversal detected in archive entry: %s", e.Path)
}

// FileCountError reports an archive with too many entries.
type FileCountError struct {
	Count uint64
	Limit uint64
}

func (e *FileCountError) Error() string {
	return fmt.Sprintf("archive contains %d files, exceeding limit of %d", e.Count, e.Limit)
}

// ResourceSizeError reports a single oversized resource.
type ResourceSizeError struct {
	Name  string
	Size  uint64
	Limit uint64
}

func (e *ResourceSizeError) Error() string {
	return fmt.Sprintf("resource %s is %dMB, exceeding limit of %dMB",
		e.Name, e.Size/(1024*1024), e.Limit/(1024*1024))
}

// TotalSizeError reports total decompressed output exceeding the ceiling.
type TotalSizeError struct {
	Total uint64
	Limit uint64
}

func (e *TotalSizeError) Error() string {
	return fmt.Sprintf("total decompressed size %d exceeds limit of %d", e.Total, e.Limit)
}

// NestingError reports XML nesting deeper than the configured limit.
type NestingError struct {
	Depth int
	Limit int
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("XML nesting depth %d exceeds limit of %d", e.Depth, e.Limit)
}

// DRMError reports DRM-protected content, which is categorically unsupported.
type DRMError struct {
	Format  string
	DRMType string
}

func (e *DRMError) Error() string {
	return fmt.Sprintf("DRM protected file (%s on %s)", e.DRMType, e.Format)
}

// TimeoutError reports the parse wall-clock budget being exhausted.
type TimeoutError struct {
	Seconds uint64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("parse timeout after %ds", e.Seconds)
}

// CheckPathTraversal rejects absolute paths, Windows drive-letter paths, and
// any path containing a parent-directory component.
func CheckPathTraversal(path string) error {
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return &TraversalError{Path: path}
	}
	if len(path) >= 2 && path[1] == ':' &&
		((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return &TraversalError{Path: path}
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if part == ".." {
			return &TraversalError{Path: path}
		}
	}
	return nil
}

// CheckCompressionRatio rejects entries whose declared decompressed size is
// disproportionate to their compressed size. A zero compressed size with
// nonzero output is treated as an unbounded ratio; zero/zero is accepted.
// The ratio uses integer division.
func CheckCompressionRatio(compressed, uncompressed uint64, limits Limits) error {
	if compressed == 0 {
		if uncompressed > 0 {
			return &RatioError{Ratio: ^uint64(0), Limit: limits.MaxCompressionRatio}
		}
		return nil
	}
	ratio := uncompressed / compressed
	if ratio > limits.MaxCompressionRatio {
		return &RatioError{Ratio: ratio, Limit: limits.MaxCompressionRatio}
	}
	return nil
}

// CheckFileCount rejects archives with more entries than allowed.
func CheckFileCount(count uint64, limits Limits) error {
	if count > limits.MaxFileCount {
		return &FileCountError{Count: count, Limit: limits.MaxFileCount}
	}
	return nil
}

// CheckResourceSize rejects a single entry larger than allowed.
func CheckResourceSize(name string, size uint64, limits Limits) error {
	if size > limits.MaxResourceSizeBytes {
		return &ResourceSizeError{Name: name, Size: size, Limit: limits.MaxResourceSizeBytes}
	}
	return nil
}

// CheckTotalSize rejects cumulative decompressed output beyond the ceiling.
func CheckTotalSize(total uint64, limits Limits) error {
	if total > limits.MaxTotalSizeBytes {
		return &TotalSizeError{Total: total, Limit: limits.MaxTotalSizeBytes}
	}
	return nil
}

// CheckNestingDepth rejects element nesting deeper than allowed.
func CheckNestingDepth(depth int, limits Limits) error {
	if depth > limits.MaxNestingDepth {
		return &NestingError{Depth: depth, Limit: limits.MaxNestingDepth}
	}
	return nil
}
