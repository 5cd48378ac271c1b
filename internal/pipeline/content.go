package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HasMeaningfulContent reports whether a rendered fragment shows anything:
// non-whitespace text, an image or a math element. Empty wrappers such as
// "<p></p>" do not count. Unparsable input counts as content.
func HasMeaningfulContent(htmlContent string) bool {
	if strings.TrimSpace(htmlContent) == "" {
		return false
	}
	nodes, err := parseFragment(htmlContent)
	if err != nil {
		return true
	}
	for _, n := range nodes {
		if meaningful(n) {
			return true
		}
	}
	return false
}

func meaningful(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(n.Data) != ""
	case html.ElementNode:
		if n.DataAtom == atom.Img || n.DataAtom == atom.Math {
			return true
		}
	case html.CommentNode:
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if meaningful(c) {
			return true
		}
	}
	return false
}
