package events

import (
	"regexp"
	"strings"
)

// Cleaner strips embedded markup from upstream free-text fields and decodes
// a fixed table of HTML entities. Rule order is significant: line-break and
// paragraph-close tags become spaces before the generic tag strip, otherwise
// adjacent text fragments would be glued together without a separator.
type Cleaner struct{}

func NewCleaner() *Cleaner {
	return &Cleaner{}
}

var (
	brTagRe      = regexp.MustCompile(`(?i)<br\s*/?>`)
	pCloseTagRe  = regexp.MustCompile(`(?i)</p>`)
	anyTagRe     = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	dotUpperRe   = regexp.MustCompile(`\.([A-Z])`)
	semicolonRe  = regexp.MustCompile(`;([a-zA-Z])`)
)

// entityTable is the fixed entity table: whitespace, the five
// XML-predefined entities, typographic punctuation, and the French accented
// characters the upstream dataset is known to emit. Entities outside this
// table stay undecoded. Entries apply sequentially in table order, so a
// double-encoded "&amp;eacute;" decodes to "é" in a single cleaning pass.
var entityTable = [...][2]string{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&rsquo;", "'"},
	{"&lsquo;", "'"},
	{"&rdquo;", `"`},
	{"&ldquo;", `"`},
	{"&hellip;", "..."},
	{"&mdash;", "—"},
	{"&ndash;", "–"},
	{"&eacute;", "é"},
	{"&egrave;", "è"},
	{"&agrave;", "à"},
	{"&ccedil;", "ç"},
	{"&ocirc;", "ô"},
	{"&ecirc;", "ê"},
	{"&acirc;", "â"},
	{"&ucirc;", "û"},
}

func decodeEntities(text string) string {
	for _, entity := range entityTable {
		text = strings.ReplaceAll(text, entity[0], entity[1])
	}
	return text
}

// Run cleans a single free-text field. The literal string "null" (the
// upstream serializes absent values that way) maps to the empty string.
func (c *Cleaner) Run(text string) string {
	if text == "" || text == "null" {
		return ""
	}

	text = brTagRe.ReplaceAllString(text, " ")
	text = pCloseTagRe.ReplaceAllString(text, " ")
	text = anyTagRe.ReplaceAllString(text, "")
	text = decodeEntities(text)
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// RunDescription applies Run and then repairs missing post-punctuation
// spacing: a space after "." when directly followed by an uppercase letter,
// and after ";" when directly followed by a letter.
func (c *Cleaner) RunDescription(text string) string {
	cleaned := c.Run(text)

	cleaned = dotUpperRe.ReplaceAllString(cleaned, ". $1")
	cleaned = semicolonRe.ReplaceAllString(cleaned, "; $1")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}
