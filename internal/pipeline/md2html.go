package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates goldmark failed to render a draft.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultHighlightStyle is the chroma style for fenced code blocks.
const DefaultHighlightStyle = "monokai"

// HTMLConverter renders a Markdown body to an HTML fragment.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter is the HTMLConverter used for every page and preview.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter returns a converter for drafts: GFM tables and
// autolinks, footnotes, definition lists, typographic punctuation, heading
// IDs for the table of contents, raw HTML passthrough and chroma
// highlighting with inline styles and line numbers. An empty style selects
// DefaultHighlightStyle.
func NewGoldmarkConverter(style string) *GoldmarkConverter {
	if style == "" {
		style = DefaultHighlightStyle
	}
	return &GoldmarkConverter{md: goldmark.New(
		goldmark.WithExtensions(draftExtensions(style)...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID(), parser.WithAttribute()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

func draftExtensions(style string) []goldmark.Extender {
	return []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		extension.DefinitionList,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle(style),
			highlighting.WithGuessLanguage(true),
			highlighting.WithFormatOptions(chromahtml.WithLineNumbers(true)),
		),
	}
}

// ToHTML renders content. Goldmark has no cancellation, so ctx is checked
// before and after the conversion.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
