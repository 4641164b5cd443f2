package parse

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// parsePDF extracts text page by page via pdfcpu, then applies two
// strategies in order: reconstruct tab/gap-delimited table rows and map
// them through the header-based table parser; when the pages yield no table
// structure, fall back to free-text pattern matching over the lines.
func parsePDF(path string, result *Result) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	conf := pdfmodel.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return fmt.Errorf("pdfcpu read: %w", err)
	}

	var lines []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText, err := extractPageText(ctx, pageNr)
		if err != nil {
			result.skip(fmt.Sprintf("page %d", pageNr), err)
			continue
		}
		for _, line := range strings.Split(pageText, "\n") {
			if line = strings.TrimRight(line, " "); line != "" {
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return fmt.Errorf("no text content found in PDF")
	}

	for i, rows := range detectTableBlocks(lines) {
		frameworks, err := parseTable(rows, result)
		if err != nil {
			result.skip(fmt.Sprintf("pdf table %d", i+1), err)
			continue
		}
		result.Frameworks = append(result.Frameworks, frameworks...)
	}
	if len(result.Frameworks) > 0 {
		return nil
	}

	result.Frameworks = append(result.Frameworks, parseTextLines(lines, result)...)
	return nil
}

// extractPageText pulls the text of one page from its content stream.
func extractPageText(ctx *pdfmodel.Context, pageNr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return "", fmt.Errorf("extract content: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return textFromContentStream(data), nil
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream parses content stream operators for shown text.
// Line-level structure is preserved: text-positioning operators become
// newlines so the free-text strategy can see document lines.
func textFromContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		// Tj / TJ: show text.
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}

		// ': move to next line and show text.
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			sb.WriteByte('\n')
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}

		// Td / TD / T*: text positioning starts a new line.
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")),
			bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return cleanExtractedText(sb.String())
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// Octal escape, e.g. \040 for space.
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// cleanExtractedText drops non-printable characters and collapses runs of
// blank lines, keeping line breaks and tabs intact for table detection.
func cleanExtractedText(text string) string {
	var sb strings.Builder
	for _, r := range text {
		if r == '\n' || r == '\t' || (unicode.IsPrint(r) && r != unicode.ReplacementChar) {
			sb.WriteRune(r)
		}
	}

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// columnSplitRe splits a line into cells on tabs or runs of three or more
// spaces — the gaps table-layout text extraction leaves between columns.
var columnSplitRe = regexp.MustCompile(`\t+| {3,}`)

// detectTableBlocks finds runs of consecutive lines that split into the
// same number (>= 2) of cells and returns each run as table rows. A run
// must be at least two lines long (header plus data) to count as a table.
func detectTableBlocks(lines []string) [][][]string {
	var blocks [][][]string
	var current [][]string
	currentWidth := 0

	flush := func() {
		if len(current) >= 2 {
			blocks = append(blocks, current)
		}
		current = nil
		currentWidth = 0
	}

	for _, line := range lines {
		cells := splitColumns(line)
		if len(cells) < 2 {
			flush()
			continue
		}
		if currentWidth != 0 && len(cells) != currentWidth {
			flush()
		}
		currentWidth = len(cells)
		current = append(current, cells)
	}
	flush()

	return blocks
}

// splitColumns keeps empty cells so continuation rows (blank framework
// column) stay aligned with the header.
func splitColumns(line string) []string {
	cells := columnSplitRe.Split(line, -1)
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}
