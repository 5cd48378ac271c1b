package raven

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/alnah/raven/internal/assets"
	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/pipeline"
	"github.com/alnah/raven/internal/placeholder"
)

// Page template field names.
const (
	FieldSiteName       = "site_name"
	FieldPageTitle      = "page_title"
	FieldFirstH1        = "first_h1"
	FieldArticleH1      = "article_h1_html"
	FieldArticleDate    = "article_date_html"
	FieldBody           = "html_body"
	FieldTopLinks       = "top_links_html"
	FieldPrevLink       = "prev_link_html"
	FieldNextLink       = "next_link_html"
	FieldSeparator      = "separator_html"
	FieldCopyright      = "copyright_text"
	FieldLogoPath       = "rel_logo_path"
	FieldCSSName        = "local_css_name"
	FieldRecentArticles = "recent_articles_html"
	FieldPageTop        = "page_top"
	FieldPageBottom     = "page_bottom"
)

const (
	logoPath         = "/Images/logo.png"
	articleDateStyle = "font-size:0.9em; margin-bottom: 10px;"
)

// templates holds the parsed page templates of one rebuild.
type templates struct {
	full        *placeholder.Template
	top         *placeholder.Template
	bottom      *placeholder.Template
	topLink     *placeholder.Template
	separator   *placeholder.Template
	previewItem *placeholder.Template
}

func parseTemplates(ts *assets.TemplateSet) *templates {
	return &templates{
		full:        placeholder.Parse(assets.PageFullTemplate, ts.PageFull),
		top:         placeholder.Parse(assets.PageTopTemplate, ts.PageTop),
		bottom:      placeholder.Parse(assets.PageBottomTemplate, ts.PageBottom),
		topLink:     placeholder.Parse(assets.TopLinkTemplate, ts.TopLink),
		separator:   placeholder.Parse(assets.SeparatorTemplate, ts.Separator),
		previewItem: placeholder.Parse(assets.PreviewItemTemplate, ts.PreviewItem),
	}
}

// page is the per-page input to composition.
type page struct {
	title string // first H1, empty when the draft has none
	body  string // rendered HTML
	date  string // display date, empty for no date line
	prev  string // slug of the previous article
	next  string // slug of the next article
}

// composer fills the page templates with the site-wide fields.
type composer struct {
	tmpl     *templates
	base     placeholder.Fields
	siteName string
	listing  string
}

func newComposer(site *config.Site, tmpl *templates) (*composer, error) {
	styles := make(placeholder.Fields, len(site.Styles))
	for k, v := range site.Styles {
		styles[k] = v
	}

	links := make([]string, 0, len(site.TopLinks))
	for _, l := range site.TopLinks {
		out, err := tmpl.topLink.Execute(styles.Merge(placeholder.Fields{
			"name": html.EscapeString(l.Name),
			"link": html.EscapeString(l.URL),
		}))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRender, err)
		}
		links = append(links, out)
	}

	base := styles.Merge(placeholder.Fields{
		FieldSiteName:       html.EscapeString(site.Name),
		FieldTopLinks:       strings.Join(links, " "),
		FieldCopyright:      html.EscapeString(site.Copyright),
		FieldLogoPath:       logoPath,
		FieldCSSName:        assets.StylesheetName + assets.StyleExt,
		FieldRecentArticles: "",
	})
	return &composer{tmpl: tmpl, base: base, siteName: site.Name}, nil
}

// setListing makes the homepage listing available to every page.
func (c *composer) setListing(listing string) {
	c.listing = listing
	c.base[FieldRecentArticles] = listing
}

func (c *composer) separator(body string) (string, error) {
	if !pipeline.HasMeaningfulContent(body) {
		return "", nil
	}
	return c.tmpl.separator.Execute(c.base)
}

// compose renders a full HTML document.
func (c *composer) compose(p page) (string, error) {
	title := p.title
	if title == "" {
		title = c.siteName
	}

	sep, err := c.separator(p.body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	fields := c.base.Merge(placeholder.Fields{
		FieldPageTitle:   html.EscapeString(title),
		FieldFirstH1:     html.EscapeString(p.title),
		FieldArticleH1:   c.articleH1(p.title),
		FieldArticleDate: articleDate(p.date),
		FieldBody:        p.body,
		FieldPrevLink:    navLink(p.prev, "Previous"),
		FieldNextLink:    navLink(p.next, "Next"),
		FieldSeparator:   sep,
	})

	top, err := c.tmpl.top.Execute(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	bottom, err := c.tmpl.bottom.Execute(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	fields[FieldPageTop] = top
	fields[FieldPageBottom] = bottom

	out, err := c.tmpl.full.Execute(fields)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	return out, nil
}

func (c *composer) articleH1(title string) string {
	if title == "" {
		return ""
	}
	return `<h1 style="` + c.base[config.TopH1Style] + `">` + html.EscapeString(title) + `</h1>`
}

func articleDate(date string) string {
	if date == "" {
		return ""
	}
	return `<div style="` + articleDateStyle + `">` + html.EscapeString(date) + `</div>`
}

func navLink(slug, label string) string {
	if slug == "" {
		return ""
	}
	return `<a href="` + pageHref(slug) + `">` + label + `</a>`
}

// pageHref is the extension-less, root-relative URL of a page.
func pageHref(slug string) string {
	return "/" + url.PathEscape(slug)
}
