package document

// ContentNode is a block-level node in a chapter's content tree. The set of
// implementations is closed: Paragraph, Heading, List, Table, BlockQuote,
// CodeBlock, Image, HorizontalRule, and RawHTML.
type ContentNode interface {
	contentNode()
}

// InlineNode is an inline node inside a paragraph, heading, or table cell.
// The set of implementations is closed: Text, Emphasis, Strong, Code, Link,
// Superscript, Subscript, Ruby, and LineBreak.
type InlineNode interface {
	inlineNode()
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Children []InlineNode
}

// Heading is a section heading. Level is clamped to 1..6 by parsers.
type Heading struct {
	Level    int
	Children []InlineNode
}

// List is an ordered or unordered list; each item holds block-level content.
type List struct {
	Ordered bool
	Items   [][]ContentNode
}

// Table holds a header row and body rows of inline-content cells.
type Table struct {
	Headers [][]InlineNode
	Rows    [][][]InlineNode
}

// BlockQuote nests block-level content.
type BlockQuote struct {
	Children []ContentNode
}

// CodeBlock is preformatted code with an optional language tag.
type CodeBlock struct {
	Language string
	Code     string
}

// Image references a resource by id. The reference is weak: a dangling id is
// tolerated and reported, never fatal.
type Image struct {
	ResourceID string
	AltText    string
	Caption    string
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// RawHTML is markup passed through verbatim by writers that understand it.
type RawHTML string

func (Paragraph) contentNode()      {}
func (Heading) contentNode()        {}
func (List) contentNode()           {}
func (Table) contentNode()          {}
func (BlockQuote) contentNode()     {}
func (CodeBlock) contentNode()      {}
func (Image) contentNode()          {}
func (HorizontalRule) contentNode() {}
func (RawHTML) contentNode()        {}

// Text is a literal text run.
type Text string

// Emphasis wraps inline children in emphasis (em/i).
type Emphasis struct {
	Children []InlineNode
}

// Strong wraps inline children in strong emphasis (strong/b).
type Strong struct {
	Children []InlineNode
}

// Code is an inline code span.
type Code string

// Link is a hyperlink wrapping inline children.
type Link struct {
	Href     string
	Children []InlineNode
}

// Superscript wraps inline children in superscript.
type Superscript struct {
	Children []InlineNode
}

// Subscript wraps inline children in subscript.
type Subscript struct {
	Children []InlineNode
}

// Ruby is an East Asian ruby annotation pair.
type Ruby struct {
	Base       string
	Annotation string
}

// LineBreak is a forced line break.
type LineBreak struct{}

func (Text) inlineNode()        {}
func (Emphasis) inlineNode()    {}
func (Strong) inlineNode()      {}
func (Code) inlineNode()        {}
func (Link) inlineNode()        {}
func (Superscript) inlineNode() {}
func (Subscript) inlineNode()   {}
func (Ruby) inlineNode()        {}
func (LineBreak) inlineNode()   {}

// FlattenInlines extracts the plain text of a sequence of inline nodes.
// Line breaks become single spaces; ruby annotations are dropped.
func FlattenInlines(nodes []InlineNode) string {
	var b []byte
	for _, n := range nodes {
		b = appendInlineText(b, n)
	}
	return string(b)
}

func appendInlineText(b []byte, n InlineNode) []byte {
	switch v := n.(type) {
	case Text:
		b = append(b, v...)
	case Emphasis:
		for _, c := range v.Children {
			b = appendInlineText(b, c)
		}
	case Strong:
		for _, c := range v.Children {
			b = appendInlineText(b, c)
		}
	case Code:
		b = append(b, v...)
	case Link:
		for _, c := range v.Children {
			b = appendInlineText(b, c)
		}
	case Superscript:
		for _, c := range v.Children {
			b = appendInlineText(b, c)
		}
	case Subscript:
		for _, c := range v.Children {
			b = appendInlineText(b, c)
		}
	case Ruby:
		b = append(b, v.Base...)
	case LineBreak:
		b = append(b, ' ')
	}
	return b
}
