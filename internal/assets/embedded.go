package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
)

// builtin holds the default stylesheet and page templates.
//
//go:embed styles/*.css templates/*.txt
var builtin embed.FS

// Directories of builtin, one per asset kind.
const (
	styleDir    = "styles"
	templateDir = "templates"
)

// EmbeddedLoader serves the assets compiled into the binary. A project
// that leaves a file out of Config/ gets the embedded copy.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader returns a loader over the built-in assets.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: builtin}
}

// LoadStyle returns the built-in stylesheet name.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.read(styleDir, name, StyleExt, ErrStyleNotFound)
}

// LoadTemplate returns the built-in template name.txt.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.read(templateDir, name, TemplateExt, ErrTemplateNotFound)
}

func (e *EmbeddedLoader) read(dir, name, ext string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(e.fsys, path.Join(dir, name+ext))
	if err != nil {
		return "", fmt.Errorf("%w: no built-in %q", notFound, name+ext)
	}
	return string(data), nil
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
