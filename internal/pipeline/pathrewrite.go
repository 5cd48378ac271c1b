package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultImagePrefix is prepended to bare image file names.
const DefaultImagePrefix = "../Images/"

// RewritePaths rewrites references in a rendered HTML fragment:
//   - img[src] holding a bare file name (no '/' or '\') gets imagePrefix
//   - a[href] pointing at an internal *.html page becomes a root-relative,
//     extension-less path; a #fragment is kept
//
// Does NOT rewrite:
//   - URLs with a scheme (http, https, mailto, data) or protocol-relative URLs
//   - In-page anchors
//   - srcset attributes and CSS url() references
func RewritePaths(htmlContent, imagePrefix string) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return htmlContent, nil
	}

	nodes, err := parseFragment(htmlContent)
	if err != nil {
		return "", err
	}

	for _, n := range nodes {
		rewriteNode(n, imagePrefix)
	}

	return renderFragment(nodes)
}

// parseFragment parses HTML with a body context to avoid wrapping.
func parseFragment(content string) ([]*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	return html.ParseFragment(strings.NewReader(content), context)
}

// renderFragment renders each top-level node directly, without an
// <html><body> wrapper.
func renderFragment(nodes []*html.Node) (string, error) {
	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// rewriteNode traverses the DOM and rewrites image and link paths.
func rewriteNode(n *html.Node, imagePrefix string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", func(v string) string { return imagePath(v, imagePrefix) })
		case atom.A:
			rewriteAttr(n, "href", pagePath)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, imagePrefix)
	}
}

func rewriteAttr(n *html.Node, key string, rewrite func(string) string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = rewrite(attr.Val)
		}
	}
}

// imagePath prefixes a bare file name.
func imagePath(src, prefix string) string {
	if src == "" || hasScheme(src) || strings.ContainsAny(src, `/\`) {
		return src
	}
	return prefix + src
}

// pagePath turns "about.html#team" into "/about#team".
func pagePath(href string) string {
	if href == "" || hasScheme(href) || strings.HasPrefix(href, "//") || strings.HasPrefix(href, "#") {
		return href
	}

	path, fragment := href, ""
	if i := strings.IndexByte(href, '#'); i >= 0 {
		path, fragment = href[:i], href[i:]
	}
	if strings.ContainsRune(path, '?') || !strings.HasSuffix(path, ".html") {
		return href
	}

	path = strings.TrimSuffix(path, ".html")
	path = strings.TrimLeft(strings.TrimPrefix(path, "./"), "/")
	return "/" + path + fragment
}

// hasScheme reports whether s starts with "scheme:".
func hasScheme(s string) bool {
	for i, c := range s {
		switch {
		case c == ':':
			return i > 0
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return false
}
