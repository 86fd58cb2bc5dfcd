package transcript

import (
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	mdLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern    = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// RemoveLinks keeps the anchor text of markdown links and drops bare URLs.
func RemoveLinks(input string) string {
	input = mdLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// MarkdownToText renders markdown-formatted transcripts (headings, bold
// speaker labels, lists) down to plain text ahead of normalization.
func MarkdownToText(input string) string {
	rendered := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	plain := tagPattern.ReplaceAllString(string(rendered), " ")
	plain = html.UnescapeString(plain)
	return strings.Join(strings.Fields(plain), " ")
}
