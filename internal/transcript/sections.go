package transcript

import (
	"regexp"
	"strings"

	"github.com/spacesedan/earningsflow/internal/models"
)

const maxSpeakerRuns = 3

var (
	ceoPattern = regexp.MustCompile(`(?i)\b(?:CEO|Chief\s+Executive\s+Officer)[\s:]+([^.]+\.(?:[^.]+\.){0,10})`)
	cfoPattern = regexp.MustCompile(`(?i)\b(?:CFO|Chief\s+Financial\s+Officer)[\s:]+([^.]+\.(?:[^.]+\.){0,10})`)
)

// SplitSections maps cleaned text into full, prepared remarks, Q&A and the
// best-effort CEO/CFO segments. Every key is always present.
func SplitSections(text string) map[string]string {
	sections := map[string]string{
		models.SectionFull:            text,
		models.SectionPreparedRemarks: text,
		models.SectionQA:              "",
	}

	if idx, ok := qaStart(text); ok {
		sections[models.SectionPreparedRemarks] = strings.TrimSpace(text[:idx])
		sections[models.SectionQA] = strings.TrimSpace(text[idx:])
	}

	sections[models.SectionCEO] = speakerRuns(ceoPattern, text)
	sections[models.SectionCFO] = speakerRuns(cfoPattern, text)
	return sections
}

// qaStart returns the offset of the first Q&A marker, trying markers in
// registry order.
func qaStart(text string) (int, bool) {
	for _, p := range qaMarkerRegistry.Patterns() {
		if loc := p.Re.FindStringIndex(text); loc != nil {
			return loc[0], true
		}
	}
	return 0, false
}

func speakerRuns(re *regexp.Regexp, text string) string {
	matches := re.FindAllStringSubmatch(text, maxSpeakerRuns)
	if len(matches) == 0 {
		return ""
	}
	runs := make([]string, 0, len(matches))
	for _, m := range matches {
		runs = append(runs, strings.TrimSpace(m[1]))
	}
	return strings.Join(runs, " ")
}
