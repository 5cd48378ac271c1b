package raven

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/fileutil"
	"github.com/alnah/raven/internal/metadata"
	"github.com/alnah/raven/internal/pipeline"
	"github.com/alnah/raven/internal/project"
)

// Site runs the pipeline operations over one project.
type Site struct {
	layout       project.Layout
	settings     *config.Settings
	log          logrus.FieldLogger
	now          func() time.Time
	converter    pipeline.HTMLConverter
	preprocessor pipeline.MarkdownPreprocessor
	store        *metadata.Store
}

// New creates a Site over layout. Settings are validated; the layout is
// checked on each operation, not here.
func New(layout project.Layout, opts ...Option) (*Site, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Site{
		layout:       layout,
		settings:     config.DefaultSettings(),
		log:          discard,
		now:          time.Now,
		preprocessor: &pipeline.DraftPreprocessor{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.settings.Validate(); err != nil {
		return nil, err
	}
	if s.converter == nil {
		s.converter = pipeline.NewGoldmarkConverter(s.settings.Build.HighlightStyle)
	}
	s.store = metadata.NewStore(layout.Metadata, s.log, s.now)
	return s, nil
}

// Layout returns the project layout.
func (s *Site) Layout() project.Layout {
	return s.layout
}

// Settings returns the active settings.
func (s *Site) Settings() *config.Settings {
	return s.settings
}

// Store returns the metadata store.
func (s *Site) Store() *metadata.Store {
	return s.store
}

func (s *Site) lock() (*fileutil.Lock, error) {
	return fileutil.AcquireLock(s.layout.LockFile(), s.settings.Build.LockStaleAfter.Std(), s.now())
}

func (s *Site) release(l *fileutil.Lock) {
	path := l.Path()
	if err := l.Release(); err != nil {
		s.log.WithError(err).WithField("file", path).Warn("releasing lock")
	}
}
