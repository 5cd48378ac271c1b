package raven

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/pipeline"
)

// Option configures a Site.
type Option func(*Site)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Site) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sets the time source for record dates, feed build times and
// lock staleness.
func WithClock(now func() time.Time) Option {
	return func(s *Site) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSettings replaces the default settings.
func WithSettings(settings *config.Settings) Option {
	return func(s *Site) {
		if settings != nil {
			s.settings = settings
		}
	}
}

// WithConverter replaces the Goldmark converter.
func WithConverter(c pipeline.HTMLConverter) Option {
	return func(s *Site) {
		s.converter = c
	}
}
