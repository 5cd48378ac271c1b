// Package feed builds the RSS 2.0 and Atom 1.0 feeds of published articles.
package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/fileutil"
	"github.com/alnah/raven/internal/metadata"
)

// Output file names inside the HTML directory.
const (
	RSSFile  = "rss.xml"
	AtomFile = "atom.xml"
)

const (
	atomNamespace = "http://www.w3.org/2005/Atom"
	logoPath      = "/Images/logo.png"
	language      = "en"
)

// Entry is one published article.
type Entry struct {
	Number    int
	Slug      string
	Published time.Time // zero when the record date is invalid
}

// Collect selects the records that belong in a feed: not marked
// not-article and with a Markdown copy in mdDir. The result is sorted by
// article number, newest first.
func Collect(records []metadata.Record, mdDir string) []Entry {
	var entries []Entry
	for _, r := range records {
		if r.NotArticle {
			continue
		}
		if !fileutil.FileExists(filepath.Join(mdDir, r.Slug+".md")) {
			continue
		}
		e := Entry{Number: r.Number, Slug: r.Slug}
		if t, err := r.Created(); err == nil {
			e.Published = t
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Number > entries[j].Number
	})
	return entries
}

// Meta describes the feed channel.
type Meta struct {
	SiteURL  string
	SiteName string
	RSS      bool
	Atom     bool
	Built    time.Time
}

// MetaFrom builds Meta from the feeds configuration.
func MetaFrom(f config.Feeds, built time.Time) Meta {
	return Meta{SiteURL: f.SiteURL, SiteName: f.SiteName, RSS: f.RSS, Atom: f.Atom, Built: built}
}

// BaseURL returns the site URL with a scheme and without a trailing slash.
func (m Meta) BaseURL() string {
	u := strings.TrimRight(strings.TrimSpace(m.SiteURL), "/")
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u
}

func (m Meta) title() string {
	return m.SiteName + " Feed"
}

func (m Meta) description() string {
	kind := "feed"
	switch {
	case m.RSS && m.Atom:
		kind = "rss & atom feeds"
	case m.RSS:
		kind = "rss feed"
	case m.Atom:
		kind = "atom feed"
	}
	return m.SiteName + " " + kind
}

// EntryLink returns the public URL of the article.
func (m Meta) EntryLink(slug string) string {
	return m.BaseURL() + "/" + url.PathEscape(slug)
}

// EntryID returns a stable identifier derived from the entry link.
func EntryID(link string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).URN()
}

// Write removes previously generated feeds from dir, then writes the
// enabled formats. It returns the paths written.
func Write(dir string, meta Meta, entries []Entry) ([]string, error) {
	for _, name := range []string{RSSFile, AtomFile} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("removing old feed: %w", err)
		}
	}

	var written []string
	if meta.RSS {
		data, err := BuildRSS(meta, entries)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, RSSFile)
		if err := fileutil.WriteFileAtomic(path, data, fileutil.FilePermissions); err != nil {
			return written, fmt.Errorf("writing %s: %w", RSSFile, err)
		}
		written = append(written, path)
	}
	if meta.Atom {
		data, err := BuildAtom(meta, entries)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, AtomFile)
		if err := fileutil.WriteFileAtomic(path, data, fileutil.FilePermissions); err != nil {
			return written, fmt.Errorf("writing %s: %w", AtomFile, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func encode(v any) ([]byte, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
