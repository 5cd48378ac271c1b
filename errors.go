package raven

import (
	"errors"

	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/fileutil"
	"github.com/alnah/raven/internal/placeholder"
	"github.com/alnah/raven/internal/project"
)

// Sentinel errors for site operations.
var (
	ErrSourceNotFound  = errors.New("source file not found")
	ErrInvalidFilename = errors.New("invalid draft filename")
	ErrRender          = errors.New("page rendering failed")

	// Errors surfaced from internal packages.
	ErrLocked           = fileutil.ErrLocked
	ErrRootNotFound     = project.ErrRootNotFound
	ErrMissingDir       = project.ErrMissingDir
	ErrConfigDirMissing = config.ErrConfigDirMissing
	ErrConfigParse      = config.ErrConfigParse
	ErrUnknownField     = placeholder.ErrUnknownField
)
