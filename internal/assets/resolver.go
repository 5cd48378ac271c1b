package assets

import (
	"errors"
)

// Source identifies where an asset was loaded from.
type Source string

// Asset sources.
const (
	SourceCustom   Source = "custom"
	SourceEmbedded Source = "embedded"
)

// AssetResolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the asset is not found in the custom location.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
// A customBasePath that does not exist is an error.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadStyle loads a stylesheet, trying the custom loader first if available.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	content, _, err := r.loadWithFallback(func(loader AssetLoader) (string, error) {
		return loader.LoadStyle(name)
	})
	return content, err
}

// LoadTemplate loads a page template, trying the custom loader first if
// available.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	content, _, err := r.loadWithFallback(func(loader AssetLoader) (string, error) {
		return loader.LoadTemplate(name)
	})
	return content, err
}

// StyleSource reports which loader serves the named stylesheet.
func (r *AssetResolver) StyleSource(name string) (Source, error) {
	_, src, err := r.loadWithFallback(func(loader AssetLoader) (string, error) {
		return loader.LoadStyle(name)
	})
	return src, err
}

// TemplateSource reports which loader serves the named template.
func (r *AssetResolver) TemplateSource(name string) (Source, error) {
	_, src, err := r.loadWithFallback(func(loader AssetLoader) (string, error) {
		return loader.LoadTemplate(name)
	})
	return src, err
}

// loadWithFallback implements the custom-first, fallback-to-embedded logic.
func (r *AssetResolver) loadWithFallback(loadFn func(AssetLoader) (string, error)) (string, Source, error) {
	if r.custom == nil {
		content, err := loadFn(r.embedded)
		return content, SourceEmbedded, err
	}

	content, err := loadFn(r.custom)
	if err == nil {
		return content, SourceCustom, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !isNotFoundError(err) {
		return "", "", err
	}

	content, err = loadFn(r.embedded)
	return content, SourceEmbedded, err
}

// isNotFoundError checks if the error indicates the asset was not found.
func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
