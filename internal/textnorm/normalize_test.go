package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n  ", ""},
		{"lowercases", "Chen ET AL. 2019", "chen et al. 2019"},
		{"collapses runs", "Chen   et\tal.\n2019", "chen et al. 2019"},
		{"strips quotes", "\"Completeness\"", "completeness"},
		{"strips trailing period", "Accuracy.", "accuracy"},
		{"strips bracket decoration", "Chen et al. (2019)", "chen et al. 2019"},
		{"keeps internal periods", "Chen et al. 2019", "chen et al. 2019"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Chen et al. 2019",
		"  'Quoted Name.'  ",
		"MIXED   Case\tText",
		"already normalized text",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeCriterionName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"completeness", "Completeness"},
		{"  semantic   accuracy  ", "Semantic accuracy"},
		{"Timeliness", "Timeliness"},
	}

	for _, tt := range tests {
		if got := NormalizeCriterionName(tt.in); got != tt.want {
			t.Errorf("NormalizeCriterionName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("Chen et al. 2019", "chen  ET AL. 2019") {
		t.Error("expected casing/spacing variants to be equal")
	}
	if Equal("", "") {
		t.Error("empty strings must not compare equal")
	}
	if Equal("Completeness", "Consistency") {
		t.Error("distinct names must not compare equal")
	}
}
