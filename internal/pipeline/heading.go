package pipeline

import "strings"

// ExtractFirstHeading removes the first level-one heading line from text and
// returns the remaining text with leading newlines trimmed, and the heading
// title. A heading is a line starting with '#' followed by a space or tab;
// lines inside fenced code blocks are ignored. When no heading exists the
// text is returned unchanged with an empty title.
func ExtractFirstHeading(text string) (rest, title string) {
	start, end, ok := findFirstHeading(text)
	if !ok {
		return text, ""
	}
	title = strings.TrimSpace(text[start+1 : lineEnd(text, start)])
	rest = text[:start] + text[end:]
	return strings.TrimLeft(rest, "\r\n"), title
}

// StripFirstHeading removes the first level-one heading line, including its
// line break.
func StripFirstHeading(text string) string {
	start, end, ok := findFirstHeading(text)
	if !ok {
		return text
	}
	return text[:start] + text[end:]
}

// findFirstHeading returns the byte span of the first heading line,
// end including the trailing newline when present.
func findFirstHeading(text string) (start, end int, ok bool) {
	var fence string
	for pos := 0; pos < len(text); {
		eol := lineEnd(text, pos)
		line := text[pos:eol]
		next := eol
		if next < len(text) {
			next++
		}

		if marker := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence[:1]) && len(marker) >= len(fence):
				fence = ""
			}
		} else if fence == "" && isHeadingLine(line) {
			return pos, next, true
		}
		pos = next
	}
	return 0, 0, false
}

func lineEnd(text string, pos int) int {
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(text)
}

func isHeadingLine(line string) bool {
	return len(line) >= 2 && line[0] == '#' && (line[1] == ' ' || line[1] == '\t')
}

// fenceMarker returns the run of backticks or tildes opening a fenced code
// line (at most three spaces of indentation), or "".
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}
