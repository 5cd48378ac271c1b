package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// TestNewLogger - Level and format selection
// ---------------------------------------------------------------------------

func TestNewLogger_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags commonFlags
		want  logrus.Level
	}{
		{name: "default", flags: commonFlags{}, want: logrus.InfoLevel},
		{name: "verbose", flags: commonFlags{verbose: true, logLevel: "error"}, want: logrus.DebugLevel},
		{name: "quiet", flags: commonFlags{quiet: true}, want: logrus.WarnLevel},
		{name: "env level", flags: commonFlags{logLevel: "error"}, want: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			log, err := newLogger(&bytes.Buffer{}, &tt.flags)
			if err != nil {
				t.Fatalf("newLogger() error = %v", err)
			}
			if log.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := newLogger(&buf, &commonFlags{logFormat: "JSON"})
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	log.WithField("slug", "post").Info("rebuild complete")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["message"] != "rebuild complete" || entry["slug"] != "post" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Errorf("entry has no timestamp key: %v", entry)
	}
}

func TestNewLogger_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := newLogger(&buf, &commonFlags{})
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	log.Info("hello")
	if !strings.Contains(buf.String(), `msg=hello`) {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestNewLogger_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags commonFlags
	}{
		{name: "format", flags: commonFlags{logFormat: "xml"}},
		{name: "level", flags: commonFlags{logLevel: "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := newLogger(&bytes.Buffer{}, &tt.flags); !errors.Is(err, ErrInvalidLogOption) {
				t.Errorf("newLogger() error = %v, want ErrInvalidLogOption", err)
			}
		})
	}
}
