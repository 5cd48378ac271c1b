// Package project locates the blog root and names every directory inside it.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RootName is the directory name that identifies the project root.
const RootName = "Raven"

// Sentinel errors for layout operations.
var (
	ErrRootNotFound = errors.New("project root not found")
	ErrMissingDir   = errors.New("required directory missing")
)

// Directory names relative to the project root.
const (
	DraftsDir      = "Drafts"
	UnpublishedDir = "Unpublished"
	ArticlesMDDir  = "Articles-md"
	ArticlesHTML   = "Articles-html"
	MetadataDir    = "Articles-Metadata"
	ConfigDir      = "Config"
	ImagesDir      = "Images"
	LockFileName   = ".raven.lock"
)

// Layout holds absolute paths to every directory of a project.
type Layout struct {
	Root        string
	Drafts      string
	Unpublished string
	MarkdownOut string
	HTMLOut     string
	Metadata    string
	Config      string
	Images      string
}

// NewLayout builds a Layout rooted at root. The root is made absolute but
// not checked for existence.
func NewLayout(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolving root %q: %w", root, err)
	}
	return Layout{
		Root:        abs,
		Drafts:      filepath.Join(abs, DraftsDir),
		Unpublished: filepath.Join(abs, UnpublishedDir),
		MarkdownOut: filepath.Join(abs, ArticlesMDDir),
		HTMLOut:     filepath.Join(abs, ArticlesHTML),
		Metadata:    filepath.Join(abs, MetadataDir),
		Config:      filepath.Join(abs, ConfigDir),
		Images:      filepath.Join(abs, ImagesDir),
	}, nil
}

// LockFile returns the path of the single-writer lock file.
func (l Layout) LockFile() string {
	return filepath.Join(l.Root, LockFileName)
}

// Require checks that the given directories exist.
func (l Layout) Require(dirs ...string) error {
	for _, d := range dirs {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrMissingDir, d)
		}
	}
	return nil
}

// FindRoot walks up from each start directory looking for a directory named
// RootName. The first match wins.
func FindRoot(starts ...string) (string, error) {
	for _, start := range starts {
		if start == "" {
			continue
		}
		current, err := filepath.Abs(start)
		if err != nil {
			continue
		}
		for {
			if filepath.Base(current) == RootName {
				if info, err := os.Stat(current); err == nil && info.IsDir() {
					return current, nil
				}
			}
			parent := filepath.Dir(current)
			if parent == current {
				break
			}
			current = parent
		}
	}
	return "", fmt.Errorf("%w: no %q directory above %v", ErrRootNotFound, RootName, starts)
}

// Resolve picks the project root: an explicit path wins, otherwise the
// working directory and then the executable directory are searched.
func Resolve(explicit string) (Layout, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil || !info.IsDir() {
			return Layout{}, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, explicit)
		}
		return NewLayout(explicit)
	}

	var starts []string
	if wd, err := os.Getwd(); err == nil {
		starts = append(starts, wd)
	}
	if exe, err := os.Executable(); err == nil {
		starts = append(starts, filepath.Dir(exe))
	}

	root, err := FindRoot(starts...)
	if err != nil {
		return Layout{}, err
	}
	return NewLayout(root)
}
