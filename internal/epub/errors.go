package epub

import "fmt"

// MalformedError reports a structurally broken archive or XML document.
type MalformedError struct {
	Detail string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed EPUB file: %s", e.Detail)
}

// MissingContentError reports a spec-mandated file or element that is absent.
type MissingContentError struct {
	Name string
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("missing required content: %s", e.Name)
}
