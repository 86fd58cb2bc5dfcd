package transcript

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	disallowedPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?\-$%()'"/]`)
	dashRunPattern    = regexp.MustCompile(`\s*-{2,}\s*`)
	periodRunPattern  = regexp.MustCompile(`\.{2,}`)
	acronymPattern    = regexp.MustCompile(`\b(?:[A-Z]\.){2,}`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	smartQuotes = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"‘", "'", "’", "'",
	)
)

// Normalize cleans raw transcript text. It is idempotent:
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := tagPattern.ReplaceAllString(raw, " ")
	text = smartQuotes.Replace(text)
	text = disallowedPattern.ReplaceAllString(text, " ")
	text = dashRunPattern.ReplaceAllString(text, " ")
	text = periodRunPattern.ReplaceAllString(text, ".")
	text = acronymPattern.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, ".", "")
	})

	// whitespace goes last so the earlier replacements cannot leave doubled spaces behind
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
