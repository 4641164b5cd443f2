package parse

import "fmt"

// UnsupportedFormatError means the input is neither DOCX nor PDF, by
// extension or by content. It is fatal for the whole import.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q for %s (supported: .docx, .pdf)", e.Ext, e.Path)
}

// ParseError means one document section could not be interpreted. It is
// section-scoped: the orchestrator records it as a warning and continues
// with the rest of the document.
type ParseError struct {
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Section, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
