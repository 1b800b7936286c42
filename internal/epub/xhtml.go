package epub

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"go.uber.org/zap"

	"ebconv/internal/document"
	"ebconv/internal/log"
	"ebconv/internal/security"
)

// parseChapterXHTML runs a depth-tracked forward scan over one content
// document. Malformed XML stops the scan at the point of the error and the
// nodes accumulated so far are kept; exceeding the nesting-depth limit
// truncates the document the same way.
func parseChapterXHTML(content []byte, id string, limits security.Limits) document.Chapter {
	var (
		nodes        []document.ContentNode
		inlineStack  [][]document.InlineNode
		linkHrefs    []string
		title        string
		headingLevel int
		inBody       bool
		depth        int
	)

	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Entity = xml.HTMLEntity

scan:
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Partial chapter content is preserved.
			log.Warn("stopping chapter parse on XML error",
				zap.String("chapter", id), zap.Error(err))
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if err := security.CheckNestingDepth(depth, limits); err != nil {
				log.Warn("truncating chapter", zap.String("chapter", id), zap.Error(err))
				break scan
			}

			name := t.Name.Local
			switch {
			case name == "body":
				inBody = true
			case !inBody:
				// Head content is ignored.
			case name == "p":
				inlineStack = append(inlineStack, nil)
			case len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6':
				headingLevel = int(name[1] - '0')
				inlineStack = append(inlineStack, nil)
			case name == "em" || name == "i" || name == "strong" || name == "b" ||
				name == "sup" || name == "sub" || name == "code":
				if len(inlineStack) > 0 {
					inlineStack = append(inlineStack, nil)
				}
			case name == "a":
				if len(inlineStack) > 0 {
					href := ""
					for _, attr := range t.Attr {
						if attr.Name.Local == "href" {
							href = attr.Value
							break
						}
					}
					linkHrefs = append(linkHrefs, href)
					inlineStack = append(inlineStack, nil)
				}
			case name == "pre":
				inlineStack = append(inlineStack, nil)
			case name == "img":
				src, alt := "", ""
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "src":
						src = attr.Value
					case "alt":
						alt = attr.Value
					}
				}
				if src != "" {
					nodes = append(nodes, document.Image{ResourceID: src, AltText: alt})
				}
			case name == "br":
				if n := len(inlineStack); n > 0 {
					inlineStack[n-1] = append(inlineStack[n-1], document.LineBreak{})
				}
			case name == "hr":
				nodes = append(nodes, document.HorizontalRule{})
			}

		case xml.CharData:
			if !inBody || len(inlineStack) == 0 {
				break
			}
			text := strings.TrimSpace(string(t))
			if text != "" {
				n := len(inlineStack)
				inlineStack[n-1] = append(inlineStack[n-1], document.Text(text))
			}

		case xml.EndElement:
			if depth > 0 {
				depth--
			}
			if !inBody {
				break
			}

			name := t.Name.Local
			switch {
			case name == "body":
				inBody = false
			case name == "p":
				if children, ok := popInlines(&inlineStack); ok && len(children) > 0 {
					nodes = append(nodes, document.Paragraph{Children: children})
				}
			case len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6':
				if children, ok := popInlines(&inlineStack); ok {
					level := headingLevel
					if level < 1 || level > 6 {
						level = 1
					}
					// The first heading becomes the chapter title.
					if title == "" {
						title = document.FlattenInlines(children)
					}
					nodes = append(nodes, document.Heading{Level: level, Children: children})
					headingLevel = 0
				}
			case name == "em" || name == "i":
				pushInline(&inlineStack, func(children []document.InlineNode) document.InlineNode {
					return document.Emphasis{Children: children}
				})
			case name == "strong" || name == "b":
				pushInline(&inlineStack, func(children []document.InlineNode) document.InlineNode {
					return document.Strong{Children: children}
				})
			case name == "sup":
				pushInline(&inlineStack, func(children []document.InlineNode) document.InlineNode {
					return document.Superscript{Children: children}
				})
			case name == "sub":
				pushInline(&inlineStack, func(children []document.InlineNode) document.InlineNode {
					return document.Subscript{Children: children}
				})
			case name == "a":
				href := ""
				if n := len(linkHrefs); n > 0 {
					href = linkHrefs[n-1]
					linkHrefs = linkHrefs[:n-1]
				}
				pushInline(&inlineStack, func(children []document.InlineNode) document.InlineNode {
					return document.Link{Href: href, Children: children}
				})
			case name == "code":
				pushInline(&inlineStack, func(children []document.InlineNode) document.InlineNode {
					return document.Code(document.FlattenInlines(children))
				})
			case name == "pre":
				if children, ok := popInlines(&inlineStack); ok {
					nodes = append(nodes, document.CodeBlock{
						Code: document.FlattenInlines(children),
					})
				}
			}
		}
	}

	return document.Chapter{
		ID:      id,
		Title:   title,
		Content: nodes,
	}
}

// popInlines removes and returns the top inline accumulator.
func popInlines(stack *[][]document.InlineNode) ([]document.InlineNode, bool) {
	n := len(*stack)
	if n == 0 {
		return nil, false
	}
	children := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return children, true
}

// pushInline closes the top accumulator into a single inline node and
// appends it to the new top accumulator, if one remains.
func pushInline(stack *[][]document.InlineNode, wrap func([]document.InlineNode) document.InlineNode) {
	children, ok := popInlines(stack)
	if !ok {
		return
	}
	if n := len(*stack); n > 0 {
		(*stack)[n-1] = append((*stack)[n-1], wrap(children))
	}
}
