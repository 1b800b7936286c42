// Package rename renders filename templates of the form
// {placeholder|modifier} from document metadata.
package rename

import (
	"fmt"
	"strings"

	"ebconv/internal/document"
)

// Vars holds the values the template placeholders draw from.
type Vars struct {
	// Title, Author, ISBN come from metadata; Author is the first author.
	Title  string
	Author string
	ISBN   string
	// Stem and Ext describe the original filename.
	Stem string
	Ext  string
}

// VarsFromDocument builds template variables from a document and the original
// file path.
func VarsFromDocument(doc *document.Document, path string) Vars {
	v := Vars{
		Title: doc.Metadata.Title,
		ISBN:  doc.Metadata.ISBN13,
	}
	if v.ISBN == "" {
		v.ISBN = doc.Metadata.ISBN10
	}
	if len(doc.Metadata.Authors) > 0 {
		v.Author = doc.Metadata.Authors[0]
	}

	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		v.Stem = base[:i]
		v.Ext = base[i+1:]
	} else {
		v.Stem = base
	}
	return v
}

// Render expands the template. Unknown placeholders and modifiers are errors;
// everything outside braces passes through unchanged.
func Render(template string, vars Vars) (string, error) {
	var b strings.Builder
	rest := template
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])
		rest = rest[open+1:]

		end := strings.Index(rest, "}")
		if end < 0 {
			return "", fmt.Errorf("unclosed placeholder in template %q", template)
		}
		expr := rest[:end]
		rest = rest[end+1:]

		name, modifier, _ := strings.Cut(expr, "|")
		value, err := lookup(name, vars)
		if err != nil {
			return "", err
		}
		if modifier != "" {
			value, err = applyModifier(value, modifier)
			if err != nil {
				return "", err
			}
		}
		b.WriteString(value)
	}
	return b.String(), nil
}

func lookup(name string, vars Vars) (string, error) {
	switch name {
	case "title":
		return vars.Title, nil
	case "author":
		return vars.Author, nil
	case "isbn":
		return vars.ISBN, nil
	case "stem":
		return vars.Stem, nil
	case "ext":
		return vars.Ext, nil
	default:
		return "", fmt.Errorf("unknown placeholder %q", name)
	}
}

func applyModifier(value, modifier string) (string, error) {
	switch modifier {
	case "lower":
		return strings.ToLower(value), nil
	case "upper":
		return strings.ToUpper(value), nil
	case "kebab":
		return joinWords(value, "-"), nil
	case "snake":
		return joinWords(value, "_"), nil
	default:
		return "", fmt.Errorf("unknown modifier %q", modifier)
	}
}

func joinWords(value, sep string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), sep)
}
