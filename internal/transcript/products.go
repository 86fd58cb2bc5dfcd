package transcript

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spacesedan/earningsflow/internal/models"
)

const (
	maxProducts        = 10
	maxProductContexts = 3
	productContextPad  = 100
	minProductNameLen  = 3
)

var (
	productStopWords = map[string]struct{}{
		"the": {}, "our": {}, "this": {}, "that": {},
	}
	fiscalTokenPattern = regexp.MustCompile(`(?i)^(?:FY|CY|Q[1-4])[-\s]?\d`)
)

// ExtractProductMentions finds drug and product names, deduplicated by their
// uppercase form and ranked by how often they are mentioned.
func ExtractProductMentions(text string) []models.ProductMention {
	byKey := make(map[string]*models.ProductMention)
	var order []string

	for _, p := range productRegistry.Patterns() {
		for _, m := range p.Re.FindAllStringSubmatchIndex(text, -1) {
			name := strings.TrimSpace(text[m[2]:m[3]])
			if skipProductName(name) {
				continue
			}

			key := strings.ToUpper(name)
			mention, ok := byKey[key]
			if !ok {
				mention = &models.ProductMention{Name: key}
				byKey[key] = mention
				order = append(order, key)
			}
			mention.Mentions++
			if len(mention.Contexts) < maxProductContexts {
				mention.Contexts = append(mention.Contexts, window(text, m[0], m[1], productContextPad))
			}
		}
	}

	mentions := make([]models.ProductMention, 0, len(order))
	for _, key := range order {
		mentions = append(mentions, *byKey[key])
	}
	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].Mentions > mentions[j].Mentions
	})

	if len(mentions) > maxProducts {
		mentions = mentions[:maxProducts]
	}
	return mentions
}

func skipProductName(name string) bool {
	if len(name) < minProductNameLen {
		return true
	}
	if _, stop := productStopWords[strings.ToLower(name)]; stop {
		return true
	}
	return fiscalTokenPattern.MatchString(name)
}
