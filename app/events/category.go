package events

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Display categories form a fixed closed set.
const (
	CategoryArt     = "Art"
	CategoryMusique = "Musique"
	CategorySport   = "Sport"
	CategoryCulture = "Culture"
	CategoryFamille = "Famille"
	CategoryNature  = "Nature"
)

// categoryRule maps a tag keyword to a display category. The table is
// ordered and the first matching entry wins: some keywords could plausibly
// belong to several categories, so changing the order changes results.
type categoryRule struct {
	keyword  string
	category string
}

var categoryRules = []categoryRule{
	{"photo", CategoryArt},
	{"expo", CategoryArt},
	{"exposition", CategoryArt},
	{"art", CategoryArt},
	{"théâtre", CategoryArt},
	{"danse", CategoryArt},
	{"concert", CategoryMusique},
	{"musique", CategoryMusique},
	{"sport", CategorySport},
	{"cinema", CategoryCulture},
	{"conférence", CategoryCulture},
	{"enfants", CategoryFamille},
	{"famille", CategoryFamille},
	{"nature", CategoryNature},
	{"ballade", CategoryNature},
	{"visite", CategoryCulture},
}

// Categorizer infers a display category from the upstream free-text tag
// string. Matching is case-insensitive and diacritic-insensitive, so
// upstream tags that arrive accent-stripped ("theatre") still categorize.
type Categorizer struct {
	rules []categoryRule
}

func NewCategorizer() *Categorizer {
	rules := make([]categoryRule, len(categoryRules))
	for i, rule := range categoryRules {
		rules[i] = categoryRule{
			keyword:  foldDiacritics(strings.ToLower(rule.keyword)),
			category: rule.category,
		}
	}

	return &Categorizer{rules: rules}
}

// Run returns the category for a raw tag string, defaulting to Culture when
// the tags are absent, the literal "null", or match no table entry.
func (c *Categorizer) Run(tags string) string {
	if tags == "" || tags == "null" {
		return CategoryCulture
	}

	folded := foldDiacritics(strings.ToLower(tags))

	for _, rule := range c.rules {
		if strings.Contains(folded, rule.keyword) {
			return rule.category
		}
	}

	return CategoryCulture
}

// foldDiacritics removes combining marks so "théâtre" and "theatre" compare
// equal. Transform errors leave the input unchanged.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
