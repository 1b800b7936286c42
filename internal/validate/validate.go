// Package validate performs structural validation of a document and reports
// issues with severity, a stable code, and whether the repair package can fix
// them automatically.
package validate

import (
	"fmt"

	"ebconv/internal/document"
)

// Severity ranks an issue.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is one validation finding.
type Issue struct {
	Severity    Severity
	Code        string
	Message     string
	AutoFixable bool
}

// Issue codes.
const (
	CodeMissingTitle       = "missing-title"
	CodeMissingAuthor      = "missing-author"
	CodeMissingLanguage    = "missing-language"
	CodeHeadingLevel       = "heading-level-out-of-range"
	CodeDanglingResource   = "dangling-resource-reference"
	CodeDuplicateChapterID = "duplicate-chapter-id"
	CodeEmptyChapter       = "empty-chapter"
)

// Check runs all validations and returns the issues found, in a stable order.
func Check(doc *document.Document) []Issue {
	var issues []Issue

	if doc.Metadata.Title == "" {
		issues = append(issues, Issue{
			Severity:    SeverityError,
			Code:        CodeMissingTitle,
			Message:     "document has no title",
			AutoFixable: true,
		})
	}
	if len(doc.Metadata.Authors) == 0 {
		issues = append(issues, Issue{
			Severity:    SeverityWarning,
			Code:        CodeMissingAuthor,
			Message:     "document has no author",
			AutoFixable: true,
		})
	}
	if doc.Metadata.Language == "" {
		issues = append(issues, Issue{
			Severity:    SeverityWarning,
			Code:        CodeMissingLanguage,
			Message:     "document has no language",
			AutoFixable: true,
		})
	}

	seen := make(map[string]bool)
	for _, ch := range doc.Content {
		if seen[ch.ID] {
			issues = append(issues, Issue{
				Severity:    SeverityError,
				Code:        CodeDuplicateChapterID,
				Message:     fmt.Sprintf("duplicate chapter id %q", ch.ID),
				AutoFixable: true,
			})
		}
		seen[ch.ID] = true

		if len(ch.Content) == 0 {
			issues = append(issues, Issue{
				Severity:    SeverityWarning,
				Code:        CodeEmptyChapter,
				Message:     fmt.Sprintf("chapter %q has no content", ch.ID),
				AutoFixable: true,
			})
		}

		for _, node := range ch.Content {
			issues = append(issues, checkNode(doc, ch.ID, node)...)
		}
	}

	if doc.Metadata.CoverImageID != "" {
		if _, ok := doc.Resources[doc.Metadata.CoverImageID]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Code:     CodeDanglingResource,
				Message: fmt.Sprintf("cover image %q is not in the resource map",
					doc.Metadata.CoverImageID),
				AutoFixable: true,
			})
		}
	}

	return issues
}

func checkNode(doc *document.Document, chapterID string, node document.ContentNode) []Issue {
	var issues []Issue
	switch v := node.(type) {
	case document.Heading:
		if v.Level < 1 || v.Level > 6 {
			issues = append(issues, Issue{
				Severity:    SeverityError,
				Code:        CodeHeadingLevel,
				Message:     fmt.Sprintf("chapter %q: heading level %d out of range 1..6", chapterID, v.Level),
				AutoFixable: true,
			})
		}
	case document.Image:
		if _, ok := doc.Resources[v.ResourceID]; !ok {
			issues = append(issues, Issue{
				Severity:    SeverityWarning,
				Code:        CodeDanglingResource,
				Message:     fmt.Sprintf("chapter %q: image references unknown resource %q", chapterID, v.ResourceID),
				AutoFixable: false,
			})
		}
	case document.List:
		for _, item := range v.Items {
			for _, sub := range item {
				issues = append(issues, checkNode(doc, chapterID, sub)...)
			}
		}
	case document.BlockQuote:
		for _, c := range v.Children {
			issues = append(issues, checkNode(doc, chapterID, c)...)
		}
	}
	return issues
}

// HasErrors reports whether any issue is of error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
