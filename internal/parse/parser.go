// Package parse converts DOCX and PDF documents into ordered framework
// candidates. Each format has two strategies: header-mapped table extraction
// when the document carries tabular structure, and regex-driven free-text
// pattern matching otherwise. Sections that cannot be interpreted are
// skipped and reported, never fatal.
package parse

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kgquality/fwcat/internal/model"
)

// Format identifies a supported document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatPDF  Format = "pdf"
)

// Result is the outcome of parsing one document: framework candidates in
// document order plus per-section diagnostics.
type Result struct {
	Format     Format
	Frameworks []model.RawFramework

	// Warnings records sections and rows that were skipped.
	Warnings        []string
	SectionsSkipped int
}

// Parser extracts framework candidates from documents.
type Parser struct {
	maxFileSize int64
}

// New creates a Parser with the given configuration.
func New(cfg model.ParseConfig) *Parser {
	size := cfg.MaxFileSize
	if size <= 0 {
		size = model.DefaultConfig().Parse.MaxFileSize
	}
	return &Parser{maxFileSize: size}
}

// Detect determines the document format from the file extension, falling
// back to content sniffing when the extension is unknown or misleading:
// DOCX files start with the ZIP magic "PK", PDF files with "%PDF".
func (p *Parser) Detect(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return FormatDocx, nil
	case ".pdf":
		return FormatPDF, nil
	}

	if format, ok := sniffFormat(path); ok {
		return format, nil
	}
	return "", &UnsupportedFormatError{Path: path, Ext: ext}
}

// sniffFormat reads the file header to identify the real format.
func sniffFormat(path string) (Format, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := f.Read(header)
	if err != nil || n < 4 {
		return "", false
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, []byte("PK")):
		return FormatDocx, true
	case bytes.HasPrefix(header, []byte("%PDF")):
		return FormatPDF, true
	}
	return "", false
}

// Parse extracts framework candidates from the document at path. It fails
// only for setup-level problems (missing file, unsupported format, size
// limit, unreadable container); section-level problems land in the result's
// warnings.
func (p *Parser) Parse(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), p.maxFileSize)
	}

	format, err := p.Detect(path)
	if err != nil {
		return nil, err
	}

	result := &Result{Format: format}
	switch format {
	case FormatDocx:
		err = parseDocx(path, result)
	case FormatPDF:
		err = parsePDF(path, result)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s (%s): %w", path, format, err)
	}
	return result, nil
}

// skip records one skipped section.
func (r *Result) skip(section string, err error) {
	r.SectionsSkipped++
	r.Warnings = append(r.Warnings, (&ParseError{Section: section, Err: err}).Error())
}

// warn records a non-section warning (e.g. an unusable table row).
func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
