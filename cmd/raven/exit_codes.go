package main

import (
	"errors"
	"os"

	"github.com/alnah/raven"
	"github.com/alnah/raven/internal/certs"
	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/watch"
)

// Exit codes for the raven CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, arguments, settings or templates
	ExitIO      = 3 // Missing file or directory, project root not found
	ExitTLS     = 4 // Certificate generation or loading failed
	ExitLocked  = 5 // Another raven command holds the lock
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Lock held (exit 5)
	if errors.Is(err, raven.ErrLocked) {
		return ExitLocked
	}

	// TLS errors (exit 4)
	if errors.Is(err, certs.ErrGenerate) ||
		errors.Is(err, certs.ErrInvalidPEM) ||
		errors.Is(err, certs.ErrExpired) ||
		errors.Is(err, certs.ErrUnsupportedKey) {
		return ExitTLS
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidLogOption) ||
		errors.Is(err, raven.ErrInvalidFilename) ||
		errors.Is(err, raven.ErrUnknownField) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrInputTooLarge) ||
		errors.Is(err, config.ErrFieldTooLong) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, raven.ErrRootNotFound) ||
		errors.Is(err, raven.ErrMissingDir) ||
		errors.Is(err, raven.ErrConfigDirMissing) ||
		errors.Is(err, raven.ErrSourceNotFound) ||
		errors.Is(err, watch.ErrNothingToWatch) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}
