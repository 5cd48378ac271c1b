package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/metadata"
	"github.com/alnah/raven/internal/project"
)

// ---------------------------------------------------------------------------
// TestServerConfig - Settings to server wiring
// ---------------------------------------------------------------------------

func TestServerConfig(t *testing.T) {
	t.Parallel()

	layout, err := project.NewLayout(filepath.Join(t.TempDir(), "Raven"))
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	ss := config.DefaultSettings().Server
	ss.HTTPSPort = 8443
	ss.MetricsAddr = "127.0.0.1:9100"

	cfg := serverConfig(layout, ss)

	if cfg.HTTPSPort != 8443 || cfg.HTTPPort != ss.HTTPPort || cfg.MetricsAddr != "127.0.0.1:9100" {
		t.Errorf("ports = %+v", cfg)
	}
	if cfg.ReadHeaderTimeout != 10*time.Second || cfg.RenewCheckInterval != 12*time.Hour {
		t.Errorf("timeouts = %v, %v", cfg.ReadHeaderTimeout, cfg.RenewCheckInterval)
	}
	if cfg.Site.HTMLDir != layout.HTMLOut || cfg.Site.MarkdownDir != layout.MarkdownOut {
		t.Errorf("Site dirs = %+v", cfg.Site)
	}
	if cfg.Site.MainPage != "main.html" || cfg.Site.NotFoundPage != "404.html" || cfg.Site.TextSuffix != ".text" {
		t.Errorf("Site names = %+v", cfg.Site)
	}
}

func TestCertPath(t *testing.T) {
	t.Parallel()

	layout := project.Layout{Root: filepath.Join(string(filepath.Separator), "srv", "Raven")}
	abs := filepath.Join(string(filepath.Separator), "etc", "raven.pem")

	if got := certPath(layout, "server.pem"); got != filepath.Join(layout.Root, "server.pem") {
		t.Errorf("certPath(relative) = %q", got)
	}
	if got := certPath(layout, abs); got != abs {
		t.Errorf("certPath(absolute) = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestWithBindHint - Privileged port hints
// ---------------------------------------------------------------------------

func TestWithBindHint(t *testing.T) {
	t.Parallel()

	privileged := config.ServerSettings{HTTPPort: 80, HTTPSPort: 443}
	high := config.ServerSettings{HTTPPort: 8080, HTTPSPort: 8443}
	denied := fmt.Errorf("listening on https port 443: %w", os.ErrPermission)

	tests := []struct {
		name     string
		err      error
		ss       config.ServerSettings
		wantHint bool
	}{
		{name: "permission on low port", err: denied, ss: privileged, wantHint: true},
		{name: "permission on high port", err: denied, ss: high, wantHint: false},
		{name: "other error", err: errors.New("address in use"), ss: privileged, wantHint: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := withBindHint(tt.err, tt.ss)
			if !errors.Is(got, tt.err) {
				t.Errorf("withBindHint() lost the original error: %v", got)
			}
			if hasHint := strings.Contains(got.Error(), "hint:"); hasHint != tt.wantHint {
				t.Errorf("withBindHint() = %q, want hint %v", got, tt.wantHint)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDescribeOutcome - Terminal summaries
// ---------------------------------------------------------------------------

func TestDescribeOutcome(t *testing.T) {
	t.Parallel()

	rec := metadata.Record{Slug: "post", Number: 4}
	tests := []struct {
		outcome metadata.Outcome
		want    string
	}{
		{outcome: metadata.OutcomeCreated, want: "article 4 created"},
		{outcome: metadata.OutcomeExists, want: "article 4 already recorded"},
		{outcome: metadata.OutcomeNotArticle, want: "not an article, no metadata"},
	}

	for _, tt := range tests {
		if got := describeOutcome(rec, tt.outcome); got != tt.want {
			t.Errorf("describeOutcome(%v) = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}
