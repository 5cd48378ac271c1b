package raven

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alnah/raven/internal/metadata"
	"github.com/alnah/raven/internal/pipeline"
)

// PublishResult reports what Publish did.
type PublishResult struct {
	Report  *Report
	Record  metadata.Record
	Outcome metadata.Outcome
}

// validateDraftName accepts a bare *.md file name.
func validateDraftName(filename string) error {
	if filename == "" || filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	if !strings.HasSuffix(filename, ".md") {
		return fmt.Errorf("%w: %q must end in .md", ErrInvalidFilename, filename)
	}
	return nil
}

// Publish moves Unpublished/<filename> into Drafts/, rebuilds the site and
// assigns the metadata of the published draft.
func (s *Site) Publish(ctx context.Context, filename string) (*PublishResult, error) {
	if err := validateDraftName(filename); err != nil {
		return nil, err
	}
	l, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer s.release(l)

	src := filepath.Join(s.layout.Unpublished, filename)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, src)
		}
		return nil, err
	}
	if err := s.layout.Require(s.layout.Drafts); err != nil {
		return nil, err
	}
	dst := filepath.Join(s.layout.Drafts, filename)
	if err := os.Rename(src, dst); err != nil {
		return nil, fmt.Errorf("moving %s to drafts: %w", filename, err)
	}
	s.log.WithFields(logrus.Fields{"file": filename}).Info("draft published")

	rep, err := s.rebuild(ctx)
	if err != nil {
		return nil, err
	}
	rec, outcome, err := s.generateMetadata(filename)
	if err != nil {
		return nil, err
	}
	return &PublishResult{Report: rep, Record: rec, Outcome: outcome}, nil
}

// GenerateMetadata assigns a record to Drafts/<filename> when it has none.
// It is a no-op for existing records and not-article drafts.
func (s *Site) GenerateMetadata(ctx context.Context, filename string) (metadata.Record, metadata.Outcome, error) {
	if err := validateDraftName(filename); err != nil {
		return metadata.Record{}, 0, err
	}
	if err := ctx.Err(); err != nil {
		return metadata.Record{}, 0, err
	}
	l, err := s.lock()
	if err != nil {
		return metadata.Record{}, 0, err
	}
	defer s.release(l)
	return s.generateMetadata(filename)
}

func (s *Site) generateMetadata(filename string) (metadata.Record, metadata.Outcome, error) {
	path := filepath.Join(s.layout.Drafts, filename)
	data, err := os.ReadFile(path) // #nosec G304 -- validated bare file name inside Drafts/
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return metadata.Record{}, 0, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return metadata.Record{}, 0, err
	}
	slug, err := pipeline.SlugFromFilename(filename)
	if err != nil {
		return metadata.Record{}, 0, fmt.Errorf("%w: %w", ErrInvalidFilename, err)
	}

	rec, outcome, err := s.store.CreateIfAbsent(slug, string(data))
	if err != nil {
		return metadata.Record{}, 0, err
	}
	s.log.WithFields(logrus.Fields{"slug": slug, "outcome": outcome.String()}).Debug("metadata checked")
	return rec, outcome, nil
}
