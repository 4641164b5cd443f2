package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/textnorm"
)

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// headerPrefixes marks rows that are document headers, not framework names.
var headerPrefixes = []string{"comprehensive", "the following", "table present", "literature review"}

// parseTable interprets one table by its header row. Two layouts are
// recognized: the literature-survey layout (one framework per row, with a
// title column and per-paper fields) and the grouped layout (framework /
// criterion / definition columns, rows grouped under the framework whose
// cell is non-empty).
func parseTable(rows [][]string, result *Result) ([]model.RawFramework, error) {
	if len(rows) < 2 {
		return nil, errors.New("no data rows")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	if columnIndex(headers, "title") >= 0 {
		return parseSurveyTable(headers, rows[1:], result), nil
	}
	if columnIndex(headers, "framework", "author", "source") >= 0 &&
		columnIndex(headers, "criterion", "metric", "dimension") >= 0 {
		return parseGroupedTable(headers, rows[1:], result), nil
	}
	return nil, errors.New("no recognizable header row")
}

// columnIndex returns the index of the first header containing any of the
// given substrings, or -1.
func columnIndex(headers []string, substrings ...string) int {
	for i, h := range headers {
		for _, sub := range substrings {
			if strings.Contains(h, sub) {
				return i
			}
		}
	}
	return -1
}

// cell returns the trimmed cell at col, or "" when the column is absent or
// the row is short.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// parseSurveyTable handles the literature-survey layout: each row is one
// paper/framework, criteria come from a comma-separated dimensions cell.
func parseSurveyTable(headers []string, rows [][]string, result *Result) []model.RawFramework {
	titleCol := columnIndex(headers, "title")
	yearCol := columnIndex(headers, "year", "published")
	dimensionsCol := columnIndex(headers, "dimension")
	abstractCol := columnIndex(headers, "abstract")
	objectivesCol := columnIndex(headers, "objective")
	methodologyCol := columnIndex(headers, "methodology")
	algorithmCol := columnIndex(headers, "algorithm")
	topModelCol := columnIndex(headers, "top model", "topmodel")
	accuracyCol := columnIndex(headers, "accuracy")
	advantagesCol := columnIndex(headers, "advantage")
	drawbacksCol := columnIndex(headers, "drawback")
	referenceCol := columnIndex(headers, "reference")

	var frameworks []model.RawFramework
	for i, row := range rows {
		title := cell(row, titleCol)
		if title == "" || len(title) < 10 || looksLikeDocumentHeader(title) {
			if title != "" {
				result.warn("table row %d skipped: %q is not a framework title", i+2, title)
			}
			continue
		}

		year := extractYear(cell(row, yearCol))
		if year == nil {
			year = extractYear(title)
		}

		reference := cell(row, referenceCol)
		fw := model.RawFramework{
			Name:          title,
			Authors:       extractAuthors(title, reference),
			Year:          year,
			Title:         title,
			Description:   cell(row, abstractCol),
			Objectives:    cell(row, objectivesCol),
			Methodology:   cell(row, methodologyCol),
			AlgorithmUsed: cell(row, algorithmCol),
			TopModel:      cell(row, topModelCol),
			Accuracy:      cell(row, accuracyCol),
			Advantages:    cell(row, advantagesCol),
			Drawbacks:     cell(row, drawbacksCol),
			Source:        reference,
		}

		for _, dim := range splitDimensions(cell(row, dimensionsCol)) {
			definition := fmt.Sprintf("Quality dimension from %s", title)
			if year != nil {
				definition = fmt.Sprintf("Quality dimension from %s (%d)", title, *year)
			}
			fw.Criteria = append(fw.Criteria, model.RawCriterion{
				Name:        dim,
				Description: definition,
				Definitions: []string{definition},
			})
		}

		frameworks = append(frameworks, fw)
	}
	return frameworks
}

// parseGroupedTable handles the framework/criterion/definition layout: a
// non-empty framework cell starts a new framework, subsequent rows attach
// criteria to it.
func parseGroupedTable(headers []string, rows [][]string, result *Result) []model.RawFramework {
	frameworkCol := columnIndex(headers, "framework", "author", "source")
	criterionCol := columnIndex(headers, "criterion", "metric", "dimension")
	definitionCol := columnIndex(headers, "definition", "description")
	categoryCol := columnIndex(headers, "category")

	var frameworks []model.RawFramework
	var current *model.RawFramework

	for i, row := range rows {
		name := cell(row, frameworkCol)
		if name != "" {
			if current != nil {
				frameworks = append(frameworks, *current)
			}
			authors := ""
			if fields := strings.Fields(name); len(fields) > 0 {
				authors = fields[0]
			}
			current = &model.RawFramework{
				Name:    name,
				Authors: authors,
				Year:    extractYear(name),
			}
		}

		criterionName := cell(row, criterionCol)
		if criterionName == "" {
			if name == "" {
				result.warn("table row %d skipped: no framework or criterion name", i+2)
			}
			continue
		}
		if current == nil {
			result.warn("table row %d skipped: criterion %q has no framework", i+2, criterionName)
			continue
		}

		definition := cell(row, definitionCol)
		criterion := model.RawCriterion{
			Name:        textnorm.NormalizeCriterionName(criterionName),
			Description: definition,
			Category:    cell(row, categoryCol),
		}
		if definition != "" {
			criterion.Definitions = []string{definition}
		}
		current.Criteria = append(current.Criteria, criterion)
	}

	if current != nil {
		frameworks = append(frameworks, *current)
	}
	return frameworks
}

// splitDimensions splits a dimensions cell ("Completeness, Accuracy;
// Timeliness") into cleaned criterion names, dropping noise entries and
// case-insensitive duplicates.
func splitDimensions(dimensions string) []string {
	if dimensions == "" {
		return nil
	}
	normalized := strings.Join(strings.Fields(dimensions), " ")

	var names []string
	seen := make(map[string]bool)
	for _, dim := range strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		dim = strings.TrimSpace(dim)
		dim = strings.TrimRight(dim, ".-")
		dim = strings.TrimSpace(dim)
		if len(dim) <= 2 || isNoiseWord(dim) || isNumeric(dim) {
			continue
		}

		dim = textnorm.NormalizeCriterionName(dim)
		key := strings.ToLower(dim)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, dim)
	}
	return names
}

func isNoiseWord(s string) bool {
	switch strings.ToLower(s) {
	case "n/a", "na", "read", "and", "or", "the":
		return true
	}
	return false
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r != ' ' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func looksLikeDocumentHeader(s string) bool {
	lower := strings.ToLower(s)
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// extractYear finds a plausible publication year anywhere in s.
func extractYear(s string) *int {
	match := yearRe.FindString(s)
	if match == "" {
		return nil
	}
	year, err := strconv.Atoi(match)
	if err != nil || year < 1900 || year > 2100 {
		return nil
	}
	return &year
}

// extractAuthors pulls an author string from the reference cell when it
// carries more than a link label, falling back to a leading short
// capitalized segment of the title.
func extractAuthors(title, reference string) string {
	if reference != "" && !strings.EqualFold(reference, "read") {
		if authors := leadingNameLike(reference); authors != "" {
			return authors
		}
	}

	cleaned := yearRe.ReplaceAllString(title, "")
	cleaned = strings.NewReplacer("(", "", ")", "").Replace(cleaned)
	head := cleaned
	for _, sep := range []string{":", " - ", "–"} {
		if idx := strings.Index(head, sep); idx >= 0 {
			head = head[:idx]
		}
	}
	head = strings.TrimSpace(head)
	words := strings.Fields(head)
	if len(words) == 0 || len(words) > 4 || len(head) >= 50 {
		return ""
	}
	for _, w := range words[:min(2, len(words))] {
		if !startsUpper(w) {
			return ""
		}
	}
	return head
}

// leadingNameLike matches a leading capitalized name, optionally followed
// by "et al.".
var leadingNameRe = regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*(?:\s+et\s+al\.?)?)`)

func leadingNameLike(s string) string {
	return strings.TrimSpace(leadingNameRe.FindString(strings.TrimSpace(s)))
}

func startsUpper(w string) bool {
	if w == "" {
		return false
	}
	r := rune(w[0])
	return r >= 'A' && r <= 'Z'
}
