package raven

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/metadata"
	"github.com/alnah/raven/internal/pipeline"
	"github.com/alnah/raven/internal/placeholder"
)

// recentRecords selects the homepage articles: one record per article
// number (the first slug in list order wins), not-article records
// excluded, newest first, at most display entries.
func recentRecords(records []metadata.Record, display int) []metadata.Record {
	seen := make(map[int]struct{}, len(records))
	var out []metadata.Record
	for _, r := range records {
		if r.NotArticle {
			continue
		}
		if _, dup := seen[r.Number]; dup {
			continue
		}
		seen[r.Number] = struct{}{}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	if display >= 0 && len(out) > display {
		out = out[:display]
	}
	return out
}

// buildListing renders the preview items of the most recent articles from
// their Markdown copies. Articles whose copy is missing are skipped.
func (s *Site) buildListing(ctx context.Context, records []metadata.Record, hp config.Homepage, c *composer) (string, error) {
	var items []string
	for _, rec := range recentRecords(records, hp.Display) {
		log := s.log.WithField("slug", rec.Slug)
		path := filepath.Join(s.layout.MarkdownOut, rec.Slug+".md")
		data, err := os.ReadFile(path) // #nosec G304 -- path built from the project layout
		if errors.Is(err, fs.ErrNotExist) {
			log.WithField("file", path).Info("markdown copy not found, skipping preview")
			continue
		}
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}

		item, err := s.previewItem(ctx, rec, string(data), hp.PreviewLength, c)
		if err != nil {
			return "", err
		}
		items = append(items, item)
		log.Debug("preview added")
	}
	return strings.Join(items, "\n"), nil
}

func (s *Site) previewItem(ctx context.Context, rec metadata.Record, text string, previewLength int, c *composer) (string, error) {
	body := pipeline.StripFirstHeading(pipeline.NormalizeLineEndings(text))
	preview := pipeline.MakePreview(body, previewLength)

	previewHTML, err := s.renderMarkdown(ctx, preview)
	if err != nil {
		return "", err
	}

	var thumbnail string
	if rec.Thumbnail != "" {
		thumbnail, err = s.renderMarkdown(ctx, "!["+rec.ThumbnailAlt+"]("+rec.Thumbnail+")")
		if err != nil {
			return "", err
		}
	}

	out, err := c.tmpl.previewItem.Execute(c.base.Merge(placeholder.Fields{
		"slug":           html.EscapeString(rec.Slug),
		"href":           pageHref(rec.Slug),
		"title":          html.EscapeString(rec.Title),
		"date":           html.EscapeString(rec.DisplayDate()),
		"thumbnail_html": thumbnail,
		"preview_html":   previewHTML,
	}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	return out, nil
}

// renderMarkdown converts a Markdown fragment and rewrites its paths.
func (s *Site) renderMarkdown(ctx context.Context, md string) (string, error) {
	out, err := s.converter.ToHTML(ctx, md)
	if err != nil {
		return "", err
	}
	return pipeline.RewritePaths(out, s.settings.Build.ImagePrefix)
}

// writeMainPage generates main.html from the listing when no main draft
// exists.
func (s *Site) writeMainPage(c *composer, listing string, rep *Report) error {
	out, err := c.compose(page{body: listing})
	if err != nil {
		return err
	}
	if err := s.writePage(s.settings.Server.MainPage, out, rep); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"file": s.settings.Server.MainPage}).Info("homepage generated")
	return nil
}
