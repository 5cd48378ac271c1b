package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptySlug indicates a filename produced no usable slug characters.
var ErrEmptySlug = errors.New("empty slug")

// slugDisallowed matches every character outside the slug alphabet.
var slugDisallowed = regexp.MustCompile(`[^A-Za-z0-9 _-]`)

// Slugify folds accents ("é" becomes "e"), drops characters outside
// [A-Za-z0-9 _-] and trims surrounding spaces.
func Slugify(name string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		return "", fmt.Errorf("normalizing %q: %w", name, err)
	}
	slug := strings.TrimSpace(slugDisallowed.ReplaceAllString(folded, ""))
	if slug == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptySlug, name)
	}
	return slug, nil
}

// SlugFromFilename slugifies a draft filename without its extension.
func SlugFromFilename(filename string) (string, error) {
	base := filepath.Base(filename)
	return Slugify(strings.TrimSuffix(base, filepath.Ext(base)))
}
