package parse

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// parseDocx reads word/document.xml from the ZIP archive and extracts
// tables and paragraphs. Tables are the reliable carrier of framework data,
// so they take priority; paragraphs are parsed with the free-text strategy
// only when the document has no tables at all.
func parseDocx(path string, result *Result) error {
	tables, paragraphs, err := readDocxBody(path)
	if err != nil {
		return err
	}

	if len(tables) > 0 {
		for i, rows := range tables {
			frameworks, err := parseTable(rows, result)
			if err != nil {
				result.skip(fmt.Sprintf("table %d", i+1), err)
				continue
			}
			result.Frameworks = append(result.Frameworks, frameworks...)
		}
		return nil
	}

	result.Frameworks = append(result.Frameworks, parseTextLines(paragraphs, result)...)
	return nil
}

// readDocxBody walks the document XML token stream, collecting top-level
// paragraphs and table cell texts. Paragraphs inside table cells belong to
// the cell, not the paragraph list.
func readDocxBody(path string) (tables [][][]string, paragraphs []string, err error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)

	var (
		tableDepth int
		inCell     bool
		inPara     bool
		inText     bool
		cellText   strings.Builder
		paraText   strings.Builder
		curRow     []string
		curTable   [][]string
	)

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					curTable = nil
				}
			case "tr":
				if tableDepth == 1 {
					curRow = nil
				}
			case "tc":
				if tableDepth == 1 {
					inCell = true
					cellText.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inPara = true
					paraText.Reset()
				}
			case "t":
				inText = true
			}

		case xml.CharData:
			if !inText {
				continue
			}
			if inCell {
				cellText.Write(t)
			} else if inPara {
				paraText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inCell {
					// Paragraph break inside a cell becomes a space.
					cellText.WriteByte(' ')
				} else if inPara {
					inPara = false
					if text := strings.TrimSpace(paraText.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			case "tc":
				if tableDepth == 1 && inCell {
					inCell = false
					curRow = append(curRow, strings.TrimSpace(cellText.String()))
				}
			case "tr":
				if tableDepth == 1 && len(curRow) > 0 {
					curTable = append(curTable, curRow)
				}
			case "tbl":
				tableDepth--
				if tableDepth == 0 && len(curTable) > 0 {
					tables = append(tables, curTable)
				}
			}
		}
	}

	return tables, paragraphs, nil
}
