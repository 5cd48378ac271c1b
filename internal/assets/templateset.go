package assets

import "fmt"

// Template names, without the .txt extension.
const (
	PageFullTemplate    = "page_full"
	PageTopTemplate     = "page_top"
	PageBottomTemplate  = "page_bottom"
	TopLinkTemplate     = "toplinksStyle"
	SeparatorTemplate   = "separatorStyle"
	PreviewItemTemplate = "preview_item"
)

// StylesheetName is the stylesheet copied to the site root, without .css.
const StylesheetName = "global"

// TemplateNames lists every template a page build needs.
var TemplateNames = []string{
	PageFullTemplate,
	PageTopTemplate,
	PageBottomTemplate,
	TopLinkTemplate,
	SeparatorTemplate,
	PreviewItemTemplate,
}

// TemplateSet holds the raw text of every page template.
type TemplateSet struct {
	PageFull    string
	PageTop     string
	PageBottom  string
	TopLink     string
	Separator   string
	PreviewItem string
}

// LoadTemplateSet loads every template from loader. Each template falls back
// independently when the loader is an AssetResolver.
func LoadTemplateSet(loader AssetLoader) (*TemplateSet, error) {
	ts := &TemplateSet{}
	targets := map[string]*string{
		PageFullTemplate:    &ts.PageFull,
		PageTopTemplate:     &ts.PageTop,
		PageBottomTemplate:  &ts.PageBottom,
		TopLinkTemplate:     &ts.TopLink,
		SeparatorTemplate:   &ts.Separator,
		PreviewItemTemplate: &ts.PreviewItem,
	}
	for _, name := range TemplateNames {
		content, err := loader.LoadTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("loading %s%s: %w", name, TemplateExt, err)
		}
		*targets[name] = content
	}
	return ts, nil
}
