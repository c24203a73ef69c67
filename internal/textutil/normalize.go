package textutil

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTag        = regexp.MustCompile(`(?i)<(p|br|div|span|b|i|em|strong|ul|ol|li|h[1-6]|a|blockquote)\b[^>]*>`)
	spaceRun       = regexp.MustCompile(`[ \t\p{Zs}]+`)
	excessNewlines = regexp.MustCompile(`\n{3,}`)
)

// NormalizeCandidate cleans raw generation output before scoring. Models sometimes wrap the
// answer in a markdown fence, a {"text": ...} JSON object, or HTML markup even when asked for
// plain text; each wrapper is removed in that order.
func NormalizeCandidate(raw string) string {
	text := stripFence(raw)
	text = unwrapJSON(text)
	if htmlTag.MatchString(text) {
		text = stripHTML(text)
	}
	return cleanWhitespace(Normalize(text))
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Skip a language identifier on the first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.Contains(first, " ") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func unwrapJSON(text string) string {
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return text
	}
	var wrapped struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err != nil || strings.TrimSpace(wrapped.Text) == "" {
		return text
	}
	return wrapped.Text
}

func stripHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, blockquote, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n\n")
	})
	return doc.Text()
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
