package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/textnorm"
)

// Framework header patterns, tried in order: "Chen et al. (2019)",
// "Framework: Name", "Some Capitalized Name 2019".
var frameworkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+et\s+al\.?)?)\s*\(?((?:19|20)\d{2})\)?`),
	regexp.MustCompile(`(?i)Framework[:\s]+([A-Z][^(\n]+)`),
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+((?:19|20)\d{2})`),
}

// knownCriteria are quality dimension names that recur across the KG
// quality literature; a line mentioning one is a criterion candidate.
const knownCriteria = `Completeness|Accuracy|Consistency|Conciseness|Timeliness|Relevancy|Interoperability|Availability|Usability|Correctness|Currency|Coverage`

var criterionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*[-•*]\s*(` + knownCriteria + `)`),
	regexp.MustCompile(`(?i)(` + knownCriteria + `)[:\s]+`),
	regexp.MustCompile(`(?i)Criterion[:\s]+([A-Z][a-z]+)`),
	regexp.MustCompile(`^\s*\d+\.\s*([A-Z][a-z]+)`),
}

// parseTextLines applies the free-text strategy: regex-driven detection of
// framework headers, with criterion lines attached to the framework whose
// header most recently preceded them in document order.
func parseTextLines(lines []string, result *Result) []model.RawFramework {
	var frameworks []model.RawFramework
	var current *model.RawFramework

	flush := func() {
		if current != nil {
			frameworks = append(frameworks, *current)
			current = nil
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || looksLikeDocumentHeader(line) {
			continue
		}

		if fw, ok := matchFrameworkHeader(line); ok {
			flush()
			current = &fw
			continue
		}

		if current == nil {
			continue
		}

		for _, pattern := range criterionPatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			name := textnorm.NormalizeCriterionName(match[1])
			description := strings.Replace(line, match[0], "", 1)
			description = strings.TrimSpace(strings.TrimLeft(description, ":-– "))

			criterion := model.RawCriterion{Name: name, Description: description}
			if description != "" {
				criterion.Definitions = []string{description}
			}
			current.Criteria = append(current.Criteria, criterion)
			break
		}
	}

	flush()
	return frameworks
}

// matchFrameworkHeader tries the framework header patterns against one line.
func matchFrameworkHeader(line string) (model.RawFramework, bool) {
	for _, pattern := range frameworkPatterns {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		authors := strings.TrimSpace(match[1])
		var year *int
		if len(match) > 2 {
			year = extractYear(match[2])
		}

		name := authors
		if year != nil {
			name = fmt.Sprintf("%s %d", authors, *year)
		}
		return model.RawFramework{Name: name, Authors: authors, Year: year}, true
	}
	return model.RawFramework{}, false
}
