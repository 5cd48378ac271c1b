package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// RecentArticlesPlaceholder stands in for the <recent-articles> directive
// while the draft goes through Goldmark. It uses a Unicode Private Use Area
// character, which passes through conversion unchanged.
// ReplaceRecentArticles swaps it for the listing afterwards.
const RecentArticlesPlaceholder = "\uE002" // U+E002: Private Use Area

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Placeholder wrapped alone in a paragraph by Goldmark
	recentArticlesParagraph = regexp.MustCompile(`<p>\s*` + RecentArticlesPlaceholder + `\s*</p>`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// DraftPreprocessor prepares a stripped draft body for conversion.
type DraftPreprocessor struct{}

// PreprocessMarkdown normalizes line endings, compresses runs of blank lines
// and marks the <recent-articles> position.
func (p *DraftPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}

	content = NormalizeLineEndings(content)
	content = markRecentArticles(content)
	content = compressBlankLines(content)
	return content
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// markRecentArticles puts the placeholder on its own paragraph so Goldmark
// does not merge it into surrounding text.
func markRecentArticles(content string) string {
	return strings.ReplaceAll(content, RecentArticlesDirective, "\n\n"+RecentArticlesPlaceholder+"\n\n")
}

// ReplaceRecentArticles substitutes the listing HTML for the placeholder.
// Called after Goldmark conversion.
func ReplaceRecentArticles(htmlContent, listing string) string {
	if !strings.Contains(htmlContent, RecentArticlesPlaceholder) {
		return htmlContent
	}
	htmlContent = recentArticlesParagraph.ReplaceAllLiteralString(htmlContent, listing)
	return strings.ReplaceAll(htmlContent, RecentArticlesPlaceholder, listing)
}
