package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// TOCMarker is the paragraph text replaced by a table of contents.
const TOCMarker = "[TOC]"

// tocParagraph matches the marker alone in a paragraph.
var tocParagraph = regexp.MustCompile(`<p>\s*\[TOC\]\s*</p>`)

// headingInfo represents an extracted heading from HTML.
type headingInfo struct {
	Level int    // 1-6
	ID    string // anchor ID
	Text  string // heading text content
}

// headingPattern matches h1-h6 tags with id attribute.
// Captures: 1=level, 2=id, 3=inner HTML (may contain inline tags)
var headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

// htmlTagPattern matches HTML tags for stripping from heading text.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags removes tags, decodes entities and trims whitespace, so the
// text is not double-encoded when escaped again for the TOC.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// extractHeadings returns every heading carrying an id attribute.
func extractHeadings(htmlContent string) []headingInfo {
	matches := headingPattern.FindAllStringSubmatch(htmlContent, -1)
	headings := make([]headingInfo, 0, len(matches))
	for _, m := range matches {
		level, _ := strconv.Atoi(m[1])
		headings = append(headings, headingInfo{
			Level: level,
			ID:    m[2],
			Text:  stripHTMLTags(m[3]),
		})
	}
	return headings
}

// ReplaceTOC substitutes a nested list of heading links for every [TOC]
// paragraph. Without headings the marker paragraph is removed.
func ReplaceTOC(htmlContent string) string {
	if !strings.Contains(htmlContent, TOCMarker) {
		return htmlContent
	}
	toc := generateTOC(extractHeadings(htmlContent))
	return tocParagraph.ReplaceAllLiteralString(htmlContent, toc)
}

// generateTOC renders headings as nested <ul> lists. Levels are normalized
// so the shallowest heading is the outer list, and jumps of more than one
// level nest by one.
func generateTOC(headings []headingInfo) string {
	if len(headings) == 0 {
		return ""
	}

	minLevel := 6
	for _, h := range headings {
		minLevel = min(minLevel, h.Level)
	}

	var buf strings.Builder
	buf.WriteString(`<div class="toc">`)
	depth := 0
	for i, h := range headings {
		target := h.Level - minLevel + 1
		if target > depth+1 {
			target = depth + 1
		}

		switch {
		case target > depth:
			buf.WriteString("<ul>")
		case i > 0:
			buf.WriteString("</li>")
			for ; depth > target; depth-- {
				buf.WriteString("</ul></li>")
			}
		}
		depth = target

		buf.WriteString(`<li><a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString("</a>")
	}
	buf.WriteString("</li>")
	for ; depth > 1; depth-- {
		buf.WriteString("</ul></li>")
	}
	buf.WriteString("</ul></div>")
	return buf.String()
}
