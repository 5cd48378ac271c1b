package assets

import "errors"

// Sentinel errors for asset loading. Only the two not-found errors let the
// resolver fall back to the built-in copy.
var (
	ErrStyleNotFound    = errors.New("stylesheet not found")
	ErrTemplateNotFound = errors.New("page template not found")

	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid asset directory")
	ErrAssetRead        = errors.New("failed to read asset")
	ErrPathTraversal    = errors.New("asset path escapes its directory")
)
