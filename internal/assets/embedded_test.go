package assets

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/raven/internal/placeholder"
)

func TestEmbeddedLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name        string
		styleName   string
		wantErr     error
		wantContain string
	}{
		{
			name:        "loads global stylesheet",
			styleName:   StylesheetName,
			wantContain: "font-family",
		},
		{
			name:      "returns ErrStyleNotFound for nonexistent",
			styleName: "nonexistent-style-xyz",
			wantErr:   ErrStyleNotFound,
		},
		{
			name:      "returns ErrInvalidAssetName for empty name",
			styleName: "",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "returns ErrInvalidAssetName for path traversal",
			styleName: "../secret",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "returns ErrInvalidAssetName for backslash traversal",
			styleName: "..\\secret",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "returns ErrInvalidAssetName for name with dot",
			styleName: "global.min",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "returns ErrInvalidAssetName for NUL byte",
			styleName: "global\x00",
			wantErr:   ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(tt.styleName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.styleName, err)
			}
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("LoadStyle(%q) missing %q", tt.styleName, tt.wantContain)
			}
		})
	}
}

func TestEmbeddedLoader_LoadTemplate(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	for _, name := range TemplateNames {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadTemplate(name)
			if err != nil {
				t.Fatalf("LoadTemplate(%q) error = %v", name, err)
			}
			if strings.TrimSpace(got) == "" {
				t.Errorf("LoadTemplate(%q) returned empty template", name)
			}
		})
	}

	if _, err := loader.LoadTemplate("cover"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(cover) error = %v, want ErrTemplateNotFound", err)
	}
}

// TestEmbeddedTemplates_Fields checks that every embedded template only
// references fields the page renderer provides.
func TestEmbeddedTemplates_Fields(t *testing.T) {
	t.Parallel()

	styleTokens := []string{
		"TOP_DIV_STYLE", "TOP_LOGO_STYLE", "TOP_LINK_STYLE", "TOP_H1_STYLE",
		"TOP_HR_STYLE", "BOTTOM_HR_STYLE", "BOTTOM_DIV_STYLE", "BOTTOM_COPYRIGHT_STYLE",
	}
	pageFields := append([]string{
		"site_name", "page_title", "first_h1", "article_h1_html", "article_date_html",
		"html_body", "top_links_html", "prev_link_html", "next_link_html",
		"separator_html", "copyright_text", "rel_logo_path", "local_css_name",
		"recent_articles_html",
	}, styleTokens...)

	allowed := map[string][]string{
		PageFullTemplate:    append([]string{"page_top", "page_bottom"}, pageFields...),
		PageTopTemplate:     pageFields,
		PageBottomTemplate:  pageFields,
		TopLinkTemplate:     {"name", "link", "TOP_LINK_STYLE"},
		SeparatorTemplate:   styleTokens,
		PreviewItemTemplate: {"slug", "href", "title", "date", "thumbnail_html", "preview_html"},
	}

	ts, err := LoadTemplateSet(NewEmbeddedLoader())
	if err != nil {
		t.Fatalf("LoadTemplateSet() error = %v", err)
	}
	texts := map[string]string{
		PageFullTemplate:    ts.PageFull,
		PageTopTemplate:     ts.PageTop,
		PageBottomTemplate:  ts.PageBottom,
		TopLinkTemplate:     ts.TopLink,
		SeparatorTemplate:   ts.Separator,
		PreviewItemTemplate: ts.PreviewItem,
	}

	for name, text := range texts {
		fields := placeholder.Fields{}
		for _, f := range allowed[name] {
			fields[f] = ""
		}
		if _, err := placeholder.Render(name, text, fields); err != nil {
			t.Errorf("template %s: %v", name, err)
		}
	}
}
