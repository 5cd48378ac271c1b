package raven

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/alnah/raven/internal/project"
)

var fixedNow = time.Date(2025, time.December, 3, 14, 5, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test path
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

// touch sets the modification time of path to base plus offset.
func touch(t *testing.T, path string, offset time.Duration) {
	t.Helper()
	mt := fixedNow.Add(-time.Hour).Add(offset)
	if err := os.Chtimes(path, mt, mt); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
}

// newProject creates a minimal project tree and returns its layout.
func newProject(t *testing.T) project.Layout {
	t.Helper()
	root := filepath.Join(t.TempDir(), project.RootName)
	layout, err := project.NewLayout(root)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	for _, d := range []string{layout.Drafts, layout.Unpublished, layout.Config} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
	writeFile(t, filepath.Join(layout.Config, "name.txt"), "Test Blog\n")
	writeFile(t, filepath.Join(layout.Config, "toplinks.txt"), "About /about\nRSS /rss.xml\n")
	writeFile(t, filepath.Join(layout.Config, "copyright.txt"), "(c) Test\n")
	writeFile(t, filepath.Join(layout.Config, "feeds.json"), `{"siteURL":"blog.example","siteName":"Test Blog","rss":1,"atom":1}`)
	return layout
}

// newSite returns a Site over layout with a fixed clock and a null logger.
func newSite(t *testing.T, layout project.Layout, opts ...Option) (*Site, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	opts = append([]Option{WithLogger(logger), WithClock(fixedClock)}, opts...)
	site, err := New(layout, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return site, hook
}
