package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ellipsis is appended to truncated previews.
const Ellipsis = "..."

const codeFence = "```"

// markdownImage matches ![alt](target).
var markdownImage = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)

// MakePreview truncates article Markdown to roughly previewLength visible
// characters. Link labels count toward the budget, link targets do not.
// The cut never splits a word or leaves a code fence open. The result is
// trimmed and ends with an ellipsis when anything was cut. A non-positive
// previewLength yields "".
func MakePreview(content string, previewLength int) string {
	if previewLength <= 0 {
		return ""
	}

	content = StripFirstHeading(content)
	content = strings.ReplaceAll(StripDirectives(content), RecentArticlesDirective, "")
	content = markdownImage.ReplaceAllString(content, "")

	cutoff := visibleCutoff(content, previewLength)
	cutoff = extendWord(content, cutoff)
	cutoff = extendFence(content, cutoff)

	preview := strings.TrimSpace(content[:cutoff])
	if strings.TrimSpace(content[cutoff:]) == "" {
		return preview
	}
	return preview + Ellipsis
}

// visibleCutoff returns the byte offset at which budget visible runes have
// been consumed. "[label](target)" counts only the label runes.
func visibleCutoff(content string, budget int) int {
	visible, i := 0, 0
	for i < len(content) && visible < budget {
		if content[i] == '[' {
			if end := strings.IndexByte(content[i+1:], ']'); end >= 0 {
				end += i + 1
				visible += utf8.RuneCountInString(content[i+1 : end])
				i = end + 1
				if i < len(content) && content[i] == '(' {
					if paren := strings.IndexByte(content[i:], ')'); paren >= 0 {
						i += paren + 1
					}
				}
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(content[i:])
		visible++
		i += size
	}
	return i
}

// extendWord moves cutoff past any letters or digits directly following it.
func extendWord(content string, cutoff int) int {
	for cutoff < len(content) {
		r, size := utf8.DecodeRuneInString(content[cutoff:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		cutoff += size
	}
	return cutoff
}

// extendFence moves cutoff to the end of the closing fence when it falls
// inside a fenced block. Fence markers pair up in order of appearance; an
// unterminated fence runs to the end of content.
func extendFence(content string, cutoff int) int {
	for pos := 0; pos < len(content); {
		open := strings.Index(content[pos:], codeFence)
		if open < 0 {
			break
		}
		open += pos
		if open >= cutoff {
			break
		}
		closeIdx := strings.Index(content[open+len(codeFence):], codeFence)
		if closeIdx < 0 {
			return len(content)
		}
		closeEnd := open + len(codeFence) + closeIdx + len(codeFence)
		if cutoff < closeEnd {
			return closeEnd
		}
		pos = closeEnd
	}
	return cutoff
}
