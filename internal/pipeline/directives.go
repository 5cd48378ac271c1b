package pipeline

import (
	"regexp"
	"strings"
)

// Directive tokens recognised inside drafts.
const (
	NotArticleDirective     = "<not-article>"
	RecentArticlesDirective = "<recent-articles>"
)

var (
	// <thumbnail:path|alt text>, the first one wins
	thumbnailPattern = regexp.MustCompile(`<thumbnail:([^>|]*)\|([^>]*)>`)

	// Any thumbnail tag, including ones without an alt separator
	thumbnailTag = regexp.MustCompile(`<thumbnail:[^>]*>`)
)

// Directives holds the directives found in a draft.
type Directives struct {
	NotArticle     bool
	RecentArticles bool
	Thumbnail      string
	ThumbnailAlt   string
}

// ParseDirectives scans draft text for directives.
func ParseDirectives(text string) Directives {
	d := Directives{
		NotArticle:     strings.Contains(text, NotArticleDirective),
		RecentArticles: strings.Contains(text, RecentArticlesDirective),
	}
	if m := thumbnailPattern.FindStringSubmatch(text); m != nil {
		d.Thumbnail = strings.TrimSpace(m[1])
		d.ThumbnailAlt = strings.TrimSpace(m[2])
	}
	return d
}

// StripDirectives removes <not-article> and thumbnail tags. The
// <recent-articles> directive is kept, it is replaced after rendering.
func StripDirectives(text string) string {
	text = strings.ReplaceAll(text, NotArticleDirective, "")
	return thumbnailTag.ReplaceAllString(text, "")
}
