// Package textnorm canonicalizes names, titles, and definition texts so the
// matcher can treat casing, spacing, and punctuation variants as equal.
package textnorm

import "strings"

// stripped characters are punctuation-only decoration: quotes and brackets
// carry no identity, so "Chen et al. (2019)" and "Chen et al. 2019"
// normalize to the same form.
const stripped = "\"'“”‘’()[]"

// trimmed characters are dropped only from the ends of the result.
const trimmed = ".,;: "

// Normalize lowercases, strips quote/bracket decoration, trims trailing
// punctuation, and collapses internal whitespace runs to a single space.
// Total: any input maps to a string, empty input maps to "".
func Normalize(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if strings.ContainsRune(stripped, r) {
			continue
		}
		b.WriteRune(r)
	}
	normalized := strings.Join(strings.Fields(b.String()), " ")
	return strings.Trim(normalized, trimmed)
}

// NormalizeCriterionName collapses whitespace like Normalize but keeps the
// original casing except for re-capitalizing the first letter, so criterion
// names display consistently. Comparison still goes through Normalize.
func NormalizeCriterionName(name string) string {
	normalized := strings.Join(strings.Fields(name), " ")
	if normalized == "" {
		return ""
	}
	runes := []rune(normalized)
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}

// Equal reports whether two strings normalize to the same non-empty form.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}
