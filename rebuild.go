package raven

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	units "github.com/docker/go-units"
	"github.com/sirupsen/logrus"

	"github.com/alnah/raven/internal/assets"
	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/feed"
	"github.com/alnah/raven/internal/fileutil"
	"github.com/alnah/raven/internal/metadata"
	"github.com/alnah/raven/internal/pipeline"
)

// Report summarizes a rebuild.
type Report struct {
	Pages          int
	RecordsCreated int
	Feeds          []string
	BytesWritten   int64
	Duration       time.Duration
}

func (r *Report) String() string {
	return fmt.Sprintf("%d pages, %d new records, %d feeds, %s written in %s",
		r.Pages, r.RecordsCreated, len(r.Feeds),
		units.HumanSize(float64(r.BytesWritten)), r.Duration.Round(time.Millisecond))
}

// draft is one Markdown file of Drafts/.
type draft struct {
	name    string
	slug    string
	text    string
	modTime time.Time
}

// Rebuild regenerates the whole site from Drafts/ and Config/.
func (s *Site) Rebuild(ctx context.Context) (*Report, error) {
	l, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer s.release(l)
	return s.rebuild(ctx)
}

func (s *Site) rebuild(ctx context.Context) (*Report, error) {
	start := time.Now()
	if err := s.layout.Require(s.layout.Drafts); err != nil {
		return nil, err
	}

	site, err := config.LoadSite(s.layout.Config, s.layout.Metadata, s.log)
	if err != nil {
		return nil, err
	}
	resolver, err := assets.NewAssetResolver(s.layout.Config)
	if err != nil {
		return nil, err
	}
	ts, err := assets.LoadTemplateSet(resolver)
	if err != nil {
		return nil, err
	}
	css, err := resolver.LoadStyle(assets.StylesheetName)
	if err != nil {
		return nil, fmt.Errorf("loading stylesheet: %w", err)
	}
	c, err := newComposer(site, parseTemplates(ts))
	if err != nil {
		return nil, err
	}

	if err := s.prepareOutputs(); err != nil {
		return nil, err
	}

	rep := &Report{}
	if err := s.copyStatic(css, rep); err != nil {
		return nil, err
	}

	drafts, err := s.listDrafts()
	if err != nil {
		return nil, err
	}
	s.assignMetadata(drafts, rep)

	records, err := s.store.List()
	if err != nil {
		return nil, err
	}
	for number, slugs := range metadata.Duplicates(records) {
		s.log.WithFields(logrus.Fields{"number": number, "slugs": slugs}).Warn("article number shared by several records")
	}
	bySlug := make(map[string]metadata.Record, len(records))
	for _, r := range records {
		bySlug[r.Slug] = r
	}

	if err := s.copyMarkdown(drafts, rep); err != nil {
		return nil, err
	}

	listing, err := s.buildListing(ctx, records, site.Homepage, c)
	if err != nil {
		return nil, err
	}
	c.setListing(listing)

	nav := navigation(records, drafts)
	mainSlug := strings.TrimSuffix(s.settings.Server.MainPage, filepath.Ext(s.settings.Server.MainPage))
	hasMain := false
	for _, d := range drafts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.slug == mainSlug {
			hasMain = true
		}
		rec, ok := bySlug[d.slug]
		out, err := s.renderDraft(ctx, d, rec, ok, nav[d.slug], c)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", d.name, err)
		}
		if err := s.writePage(d.slug+".html", out, rep); err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"slug": d.slug, "prev": nav[d.slug].prev, "next": nav[d.slug].next}).Debug("page written")
	}

	if !hasMain {
		if err := s.writeMainPage(c, listing, rep); err != nil {
			return nil, err
		}
	}

	if err := s.copyNotFound(rep); err != nil {
		return nil, err
	}

	entries := feed.Collect(records, s.layout.MarkdownOut)
	rep.Feeds, err = feed.Write(s.layout.HTMLOut, feed.MetaFrom(site.Feeds, s.now()), entries)
	if err != nil {
		return nil, err
	}
	if !site.Feeds.Enabled() {
		s.log.Debug("feeds disabled")
	}

	rep.Duration = time.Since(start)
	s.log.WithFields(logrus.Fields{
		"pages":    rep.Pages,
		"created":  rep.RecordsCreated,
		"feeds":    len(rep.Feeds),
		"size":     units.HumanSize(float64(rep.BytesWritten)),
		"duration": rep.Duration.Round(time.Millisecond).String(),
	}).Info("rebuild complete")
	return rep, nil
}

// prepareOutputs empties the generated directories and makes sure the
// metadata directory exists.
func (s *Site) prepareOutputs() error {
	for _, dir := range []string{s.layout.HTMLOut, s.layout.MarkdownOut} {
		if err := fileutil.ClearDir(dir); err != nil {
			return fmt.Errorf("clearing %s: %w", dir, err)
		}
	}
	return os.MkdirAll(s.layout.Metadata, fileutil.DirPermissions)
}

// copyStatic copies images, the optional favicon and robots.txt, and the
// stylesheet into the HTML directory.
func (s *Site) copyStatic(css string, rep *Report) error {
	if fileutil.DirExists(s.layout.Images) {
		n, err := fileutil.CopyDir(s.layout.Images, filepath.Join(s.layout.HTMLOut, filepath.Base(s.layout.Images)))
		if err != nil {
			return fmt.Errorf("copying images: %w", err)
		}
		rep.BytesWritten += n
	} else {
		s.log.WithField("dir", s.layout.Images).Warn("images directory missing, skipping")
	}

	for _, name := range []string{config.FaviconFile, config.RobotsFile} {
		src := filepath.Join(s.layout.Config, name)
		if !fileutil.FileExists(src) {
			continue
		}
		n, err := fileutil.CopyFile(src, filepath.Join(s.layout.HTMLOut, name))
		if err != nil {
			return fmt.Errorf("copying %s: %w", name, err)
		}
		rep.BytesWritten += n
		s.log.WithField("file", name).Debug("copied")
	}

	cssName := assets.StylesheetName + assets.StyleExt
	if err := fileutil.WriteFileAtomic(filepath.Join(s.layout.HTMLOut, cssName), []byte(css), fileutil.FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", cssName, err)
	}
	rep.BytesWritten += int64(len(css))
	return nil
}

// listDrafts reads every *.md in Drafts/, ordered by modification time
// then name. Drafts whose name yields no slug, or a slug already taken, are
// skipped with a warning.
func (s *Site) listDrafts() ([]draft, error) {
	entries, err := os.ReadDir(s.layout.Drafts)
	if err != nil {
		return nil, fmt.Errorf("reading drafts: %w", err)
	}

	var drafts []draft
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		log := s.log.WithField("file", e.Name())
		slug, err := pipeline.SlugFromFilename(e.Name())
		if err != nil {
			log.WithError(err).Warn("skipping draft")
			continue
		}
		info, err := e.Info()
		if err != nil {
			log.WithError(err).Warn("skipping draft")
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.layout.Drafts, e.Name())) // #nosec G304 -- path built from the project layout
		if err != nil {
			log.WithError(err).Warn("skipping unreadable draft")
			continue
		}
		drafts = append(drafts, draft{name: e.Name(), slug: slug, text: string(data), modTime: info.ModTime()})
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		if !drafts[i].modTime.Equal(drafts[j].modTime) {
			return drafts[i].modTime.Before(drafts[j].modTime)
		}
		return drafts[i].name < drafts[j].name
	})

	seen := make(map[string]string, len(drafts))
	out := drafts[:0]
	for _, d := range drafts {
		if other, dup := seen[d.slug]; dup {
			s.log.WithFields(logrus.Fields{"file": d.name, "slug": d.slug, "conflict": other}).Warn("skipping draft with duplicate slug")
			continue
		}
		seen[d.slug] = d.name
		out = append(out, d)
	}
	return out, nil
}

// assignMetadata creates the missing records. Failures are logged per
// draft and do not stop the rebuild.
func (s *Site) assignMetadata(drafts []draft, rep *Report) {
	for _, d := range drafts {
		_, outcome, err := s.store.CreateIfAbsent(d.slug, d.text)
		if err != nil {
			s.log.WithError(err).WithField("slug", d.slug).Warn("metadata assignment failed")
			continue
		}
		if outcome == metadata.OutcomeCreated {
			rep.RecordsCreated++
		}
	}
}

func (s *Site) copyMarkdown(drafts []draft, rep *Report) error {
	for _, d := range drafts {
		n, err := fileutil.CopyFile(filepath.Join(s.layout.Drafts, d.name), filepath.Join(s.layout.MarkdownOut, d.slug+".md"))
		if err != nil {
			return fmt.Errorf("copying %s: %w", d.name, err)
		}
		rep.BytesWritten += n
	}
	return nil
}

// neighbours holds the previous and next article slugs of a page.
type neighbours struct {
	prev, next string
}

// navigation links the articles in ascending number order, restricted to
// records whose draft exists in this rebuild.
func navigation(records []metadata.Record, drafts []draft) map[string]neighbours {
	present := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		present[d.slug] = struct{}{}
	}

	var order []string
	for _, r := range records {
		if r.NotArticle {
			continue
		}
		if _, ok := present[r.Slug]; ok {
			order = append(order, r.Slug)
		}
	}

	nav := make(map[string]neighbours, len(order))
	for i, slug := range order {
		var n neighbours
		if i > 0 {
			n.prev = order[i-1]
		}
		if i < len(order)-1 {
			n.next = order[i+1]
		}
		nav[slug] = n
	}
	return nav
}

// renderDraft turns one draft into a full HTML document.
func (s *Site) renderDraft(ctx context.Context, d draft, rec metadata.Record, hasRecord bool, nav neighbours, c *composer) (string, error) {
	body, title := pipeline.ExtractFirstHeading(pipeline.StripDirectives(d.text))
	md := s.preprocessor.PreprocessMarkdown(ctx, body)

	out, err := s.converter.ToHTML(ctx, md)
	if err != nil {
		return "", err
	}
	out, err = pipeline.RewritePaths(out, s.settings.Build.ImagePrefix)
	if err != nil {
		return "", err
	}
	out = pipeline.ReplaceTOC(out)
	out = pipeline.ReplaceRecentArticles(out, c.listing)

	var date string
	if hasRecord {
		date = rec.DisplayDate()
	}
	return c.compose(page{title: title, body: out, date: date, prev: nav.prev, next: nav.next})
}

func (s *Site) writePage(name, content string, rep *Report) error {
	path := filepath.Join(s.layout.HTMLOut, name)
	if err := fileutil.WriteFileAtomic(path, []byte(content), fileutil.FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	rep.Pages++
	rep.BytesWritten += int64(len(content))
	return nil
}

// copyNotFound mirrors a generated 404 page into the Markdown directory.
func (s *Site) copyNotFound(rep *Report) error {
	name := s.settings.Server.NotFoundPage
	src := filepath.Join(s.layout.HTMLOut, name)
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		s.log.WithField("file", name).Debug("no 404 page generated")
		return nil
	}
	n, err := fileutil.CopyFile(src, filepath.Join(s.layout.MarkdownOut, name))
	if err != nil {
		return fmt.Errorf("copying %s: %w", name, err)
	}
	rep.BytesWritten += n
	return nil
}
