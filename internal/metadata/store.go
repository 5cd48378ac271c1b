package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/raven/internal/dateutil"
	"github.com/alnah/raven/internal/fileutil"
	"github.com/alnah/raven/internal/pipeline"
)

// RecordExt is the extension of record files.
const RecordExt = ".json"

// Outcome reports what CreateIfAbsent did.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeExists
	OutcomeNotArticle
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeExists:
		return "exists"
	case OutcomeNotArticle:
		return "not-article"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Store reads and writes records in one directory. It assumes a single
// writer; callers serialize mutations with the project lock.
type Store struct {
	dir string
	log logrus.FieldLogger
	now func() time.Time
}

// NewStore returns a Store over dir. A nil clock uses time.Now.
func NewStore(dir string, log logrus.FieldLogger, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{dir: dir, log: log, now: now}
}

// Dir returns the metadata directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(slug string) string {
	return filepath.Join(s.dir, slug+RecordExt)
}

// NextNumber returns max(number)+1, or 1 when records is empty. Gaps are
// never filled.
func NextNumber(records []Record) int {
	highest := 0
	for _, r := range records {
		if r.Number > highest {
			highest = r.Number
		}
	}
	return highest + 1
}

// List returns every readable record sorted by (number, slug). Unreadable
// or malformed files are skipped with a warning.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading metadata directory: %w", err)
	}

	var records []Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, RecordExt) {
			continue
		}
		slug := strings.TrimSuffix(name, RecordExt)
		entry := s.log.WithFields(logrus.Fields{"file": name, "slug": slug})

		data, err := os.ReadFile(filepath.Join(s.dir, name)) // #nosec G304 -- entry of the metadata directory
		if err != nil {
			entry.WithError(err).Warn("skipping unreadable metadata")
			continue
		}
		rec, err := decodeRecord(slug, data)
		if errors.Is(err, ErrNoNumber) {
			entry.Debug("skipping metadata without article number")
			continue
		}
		if err != nil {
			entry.WithError(err).Warn("skipping malformed metadata")
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Number != records[j].Number {
			return records[i].Number < records[j].Number
		}
		return records[i].Slug < records[j].Slug
	})
	return records, nil
}

// Get reads the record for slug. A missing file reports false.
func (s *Store) Get(slug string) (Record, bool, error) {
	data, err := os.ReadFile(s.path(slug))
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("reading record %s: %w", slug, err)
	}
	rec, err := decodeRecord(slug, data)
	if err != nil {
		return Record{}, false, fmt.Errorf("decoding record %s: %w", slug, err)
	}
	return rec, true, nil
}

// CreateIfAbsent writes a record for slug unless one exists or the draft
// is marked <not-article>. Existing records are never rewritten and no
// number is consumed for them.
func (s *Store) CreateIfAbsent(slug, draftText string) (Record, Outcome, error) {
	if slug == "" {
		return Record{}, 0, pipeline.ErrEmptySlug
	}
	d := pipeline.ParseDirectives(draftText)
	if d.NotArticle {
		return Record{}, OutcomeNotArticle, nil
	}

	if _, err := os.Stat(s.path(slug)); err == nil {
		rec, _, getErr := s.Get(slug)
		if getErr != nil {
			rec = Record{Slug: slug}
		}
		return rec, OutcomeExists, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Record{}, 0, fmt.Errorf("checking record %s: %w", slug, err)
	}

	if err := os.MkdirAll(s.dir, fileutil.DirPermissions); err != nil {
		return Record{}, 0, fmt.Errorf("creating metadata directory: %w", err)
	}
	existing, err := s.List()
	if err != nil {
		return Record{}, 0, err
	}

	rec := Record{
		Slug:         slug,
		Number:       NextNumber(existing),
		Title:        slug,
		DateCreated:  dateutil.FormatTimestamp(s.now()),
		Thumbnail:    d.Thumbnail,
		ThumbnailAlt: d.ThumbnailAlt,
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return Record{}, 0, err
	}
	if err := fileutil.WriteFileAtomic(s.path(slug), data, fileutil.FilePermissions); err != nil {
		return Record{}, 0, fmt.Errorf("writing record %s: %w", slug, err)
	}

	s.log.WithFields(logrus.Fields{"slug": slug, "number": rec.Number}).Info("metadata created")
	return rec, OutcomeCreated, nil
}

// Duplicates maps every article number shared by more than one slug to
// those slugs, sorted.
func Duplicates(records []Record) map[int][]string {
	bySlug := make(map[int][]string)
	for _, r := range records {
		bySlug[r.Number] = append(bySlug[r.Number], r.Slug)
	}
	dups := make(map[int][]string)
	for n, slugs := range bySlug {
		if len(slugs) > 1 {
			sort.Strings(slugs)
			dups[n] = slugs
		}
	}
	return dups
}
