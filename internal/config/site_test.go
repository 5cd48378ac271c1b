package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// ---------------------------------------------------------------------------
// TestLoadSite - Config/ directory parsing
// ---------------------------------------------------------------------------

func TestLoadSite_Full(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := filepath.Join(root, "Config")
	writeFile(t, filepath.Join(cfg, NameFile), "  My Blog \n")
	writeFile(t, filepath.Join(cfg, CopyrightFile), "(c) 2025 Me\n")
	writeFile(t, filepath.Join(cfg, TopLinksFile), "Home /\n\nAbout  /about page\nlonely\n")
	writeFile(t, filepath.Join(cfg, TopStyleFile), "# comment\nTOP_H1_STYLE \"color:red;\"\nnot a var\n")
	writeFile(t, filepath.Join(cfg, BottomStyleFile), "BOTTOM_HR_STYLE   \"\"\nCUSTOM \"x\"\n")
	writeFile(t, filepath.Join(cfg, FeedsFile), `{"siteURL": "blog.example.com", "siteName": "My Blog", "rss": 1, "atom": 0}`)
	writeFile(t, filepath.Join(cfg, HomepageFile), `{"display": 3, "previewLength": 80}`)

	logger, _ := test.NewNullLogger()
	site, err := LoadSite(cfg, filepath.Join(root, "Articles-Metadata"), logger)
	if err != nil {
		t.Fatalf("LoadSite() error = %v", err)
	}

	if site.Name != "My Blog" {
		t.Errorf("Name = %q", site.Name)
	}
	if site.Copyright != "(c) 2025 Me" {
		t.Errorf("Copyright = %q", site.Copyright)
	}
	wantLinks := []Link{{Name: "Home", URL: "/"}, {Name: "About", URL: "/about page"}}
	if diff := cmp.Diff(wantLinks, site.TopLinks); diff != "" {
		t.Errorf("TopLinks mismatch (-want +got):\n%s", diff)
	}
	if site.Styles[TopH1Style] != "color:red;" {
		t.Errorf("TOP_H1_STYLE = %q", site.Styles[TopH1Style])
	}
	if site.Styles[BottomHRStyle] != "" {
		t.Errorf("BOTTOM_HR_STYLE = %q, want empty override", site.Styles[BottomHRStyle])
	}
	if site.Styles[TopDivStyle] != DefaultStyles()[TopDivStyle] {
		t.Errorf("TOP_DIV_STYLE = %q, want default", site.Styles[TopDivStyle])
	}
	if site.Styles["CUSTOM"] != "x" {
		t.Errorf("CUSTOM = %q", site.Styles["CUSTOM"])
	}
	wantFeeds := Feeds{SiteURL: "blog.example.com", SiteName: "My Blog", RSS: true}
	if diff := cmp.Diff(wantFeeds, site.Feeds); diff != "" {
		t.Errorf("Feeds mismatch (-want +got):\n%s", diff)
	}
	if site.Homepage != (Homepage{Display: 3, PreviewLength: 80}) {
		t.Errorf("Homepage = %+v", site.Homepage)
	}
}

func TestLoadSite_Defaults(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := filepath.Join(root, "Config")
	writeFile(t, filepath.Join(cfg, ".keep"), "")

	logger, hook := test.NewNullLogger()
	site, err := LoadSite(cfg, filepath.Join(root, "Articles-Metadata"), logger)
	if err != nil {
		t.Fatalf("LoadSite() error = %v", err)
	}
	if site.Name != "" || site.Copyright != "" || len(site.TopLinks) != 0 {
		t.Errorf("unexpected text config: %+v", site)
	}
	if diff := cmp.Diff(DefaultStyles(), site.Styles); diff != "" {
		t.Errorf("Styles mismatch (-want +got):\n%s", diff)
	}
	if site.Feeds.Enabled() {
		t.Error("feeds enabled without feeds.json")
	}
	if site.Homepage != (Homepage{Display: DefaultDisplay, PreviewLength: DefaultPreviewLength}) {
		t.Errorf("Homepage = %+v", site.Homepage)
	}

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["file"] == FeedsFile {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning about missing feeds.json")
	}
}

func TestLoadSite_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing config dir", func(t *testing.T) {
		t.Parallel()

		logger, _ := test.NewNullLogger()
		_, err := LoadSite(filepath.Join(t.TempDir(), "Config"), "", logger)
		if !errors.Is(err, ErrConfigDirMissing) {
			t.Errorf("LoadSite() error = %v, want ErrConfigDirMissing", err)
		}
	})

	t.Run("malformed feeds is fatal", func(t *testing.T) {
		t.Parallel()

		cfg := filepath.Join(t.TempDir(), "Config")
		writeFile(t, filepath.Join(cfg, FeedsFile), `{"siteURL": `)
		logger, _ := test.NewNullLogger()
		_, err := LoadSite(cfg, "", logger)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("LoadSite() error = %v, want ErrConfigParse", err)
		}
	})
}

func TestLoadHomepage(t *testing.T) {
	t.Parallel()

	defaults := Homepage{Display: DefaultDisplay, PreviewLength: DefaultPreviewLength}

	tests := []struct {
		name    string
		primary string
		legacy  string
		want    Homepage
		wantLog bool
	}{
		{name: "none", want: defaults},
		{name: "primary", primary: `{"display": 2}`, want: Homepage{Display: 2, PreviewLength: DefaultPreviewLength}},
		{name: "legacy location", legacy: `{"previewLength": 40}`, want: Homepage{Display: DefaultDisplay, PreviewLength: 40}},
		{name: "primary wins", primary: `{"display": 1}`, legacy: `{"display": 9}`, want: Homepage{Display: 1, PreviewLength: DefaultPreviewLength}},
		{name: "malformed", primary: `{display`, want: defaults, wantLog: true},
		{name: "negative ignored", primary: `{"display": -3}`, want: defaults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			primary := filepath.Join(dir, "Config", HomepageFile)
			legacy := filepath.Join(dir, "Articles-Metadata", HomepageFile)
			if tt.primary != "" {
				writeFile(t, primary, tt.primary)
			}
			if tt.legacy != "" {
				writeFile(t, legacy, tt.legacy)
			}

			logger, hook := test.NewNullLogger()
			got := loadHomepage([]string{primary, legacy}, logger)
			if got != tt.want {
				t.Errorf("loadHomepage() = %+v, want %+v", got, tt.want)
			}
			warned := hook.LastEntry() != nil && hook.LastEntry().Level == logrus.WarnLevel
			if warned != tt.wantLog {
				t.Errorf("warning logged = %v, want %v", warned, tt.wantLog)
			}
		})
	}
}

func TestFlag_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		`1`: true, `0`: false, `true`: true, `false`: false,
		`"1"`: true, `null`: false, `2`: false,
	}
	for in, want := range tests {
		var f flag
		if err := f.UnmarshalJSON([]byte(in)); err != nil {
			t.Errorf("UnmarshalJSON(%s) error = %v", in, err)
			continue
		}
		if bool(f) != want {
			t.Errorf("UnmarshalJSON(%s) = %v, want %v", in, f, want)
		}
	}

	var f flag
	if err := f.UnmarshalJSON([]byte(`"maybe"`)); err == nil {
		t.Error("UnmarshalJSON(maybe) expected error")
	}
}
