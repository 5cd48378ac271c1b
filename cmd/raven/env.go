package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrInvalidLogOption indicates an unknown log level or format.
var ErrInvalidLogOption = errors.New("invalid log option")

// Log formats accepted by --log-format and RAVEN_LOG_FORMAT.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// newLogger builds the logger shared by every component of a command.
// Verbose and quiet take precedence over level; an empty level is info.
func newLogger(w io.Writer, flags *commonFlags) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	switch strings.ToLower(flags.logFormat) {
	case "", logFormatText:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case logFormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	default:
		return nil, fmt.Errorf("%w: log format %q (want text or json)", ErrInvalidLogOption, flags.logFormat)
	}

	switch {
	case flags.verbose:
		log.SetLevel(logrus.DebugLevel)
	case flags.quiet:
		log.SetLevel(logrus.WarnLevel)
	case flags.logLevel != "":
		level, err := logrus.ParseLevel(flags.logLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLogOption, err)
		}
		log.SetLevel(level)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log, nil
}
