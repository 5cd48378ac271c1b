package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader reads flat asset files from one directory, normally the
// project Config/ directory: {dir}/{name}.css and {dir}/{name}.txt.
type FilesystemLoader struct {
	dir string // absolute, symlinks resolved
}

// NewFilesystemLoader returns a loader over dir, which must be an existing
// directory. Errors wrap ErrInvalidBasePath.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	switch info, err := os.Stat(abs); {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidBasePath, abs)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidBasePath, abs)
	}
	return &FilesystemLoader{dir: abs}, nil
}

// BasePath returns the resolved directory.
func (f *FilesystemLoader) BasePath() string {
	return f.dir
}

// LoadStyle reads name.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	return f.read(name+StyleExt, name, ErrStyleNotFound)
}

// LoadTemplate reads name.txt.
func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return f.read(name+TemplateExt, name, ErrTemplateNotFound)
}

func (f *FilesystemLoader) read(file, name string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	p, err := f.contained(filepath.Join(f.dir, file))
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(p) // #nosec G304 -- contained in f.dir
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s", notFound, file)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

// contained resolves symlinks in p and rejects targets outside f.dir. A
// missing file keeps its path and fails when opened.
func (f *FilesystemLoader) contained(p string) (string, error) {
	if real, err := filepath.EvalSymlinks(p); err == nil {
		p = real
	}
	rel, err := filepath.Rel(f.dir, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, p)
	}
	return p, nil
}

var _ AssetLoader = (*FilesystemLoader)(nil)
