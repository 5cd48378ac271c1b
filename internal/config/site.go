package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config/ file names.
const (
	NameFile         = "name.txt"
	TopLinksFile     = "toplinks.txt"
	CopyrightFile    = "copyright.txt"
	TopStyleFile     = "topstyle.css"
	BottomStyleFile  = "bottomstyle.css"
	FeedsFile        = "feeds.json"
	HomepageFile     = "homepage.json"
	FaviconFile      = "favicon.ico"
	RobotsFile       = "robots.txt"
	MaxConfigFileLen = MaxInputSize
)

// Homepage defaults.
const (
	DefaultDisplay       = 5
	DefaultPreviewLength = 150
)

// ErrConfigDirMissing indicates the Config/ directory does not exist.
var ErrConfigDirMissing = errors.New("config directory missing")

// Style token names accepted in topstyle.css and bottomstyle.css.
const (
	TopDivStyle          = "TOP_DIV_STYLE"
	TopLogoStyle         = "TOP_LOGO_STYLE"
	TopLinkStyle         = "TOP_LINK_STYLE"
	TopH1Style           = "TOP_H1_STYLE"
	TopHRStyle           = "TOP_HR_STYLE"
	BottomHRStyle        = "BOTTOM_HR_STYLE"
	BottomDivStyle       = "BOTTOM_DIV_STYLE"
	BottomCopyrightStyle = "BOTTOM_COPYRIGHT_STYLE"
)

var topStyleDefaults = map[string]string{
	TopDivStyle:  "display:flex; align-items:center; justify-content:space-between; padding:10px 0;",
	TopLogoStyle: "max-height:60px; margin-right:15px;",
	TopLinkStyle: "margin-left:15px; font-size:1.5em",
	TopH1Style:   "margin:0; font-size:3em; font-style: normal;",
	TopHRStyle:   "border:none; height:1px; background-color:#ccc; margin: 15px 0;",
}

var bottomStyleDefaults = map[string]string{
	BottomHRStyle:        "border:none; height:1px; background-color:#ccc;",
	BottomDivStyle:       "font-size:1.33em; display:flex; justify-content:space-between; padding:10px 0;",
	BottomCopyrightStyle: "text-align:center; font-size:0.9em; margin-top:10px;",
}

// StyleTokens lists every style token in a stable order.
var StyleTokens = []string{
	TopDivStyle, TopLogoStyle, TopLinkStyle, TopH1Style, TopHRStyle,
	BottomHRStyle, BottomDivStyle, BottomCopyrightStyle,
}

var styleVarLine = regexp.MustCompile(`^(\w+)\s+"([^"]*)"`)

// Link is one navigation entry from toplinks.txt.
type Link struct {
	Name string
	URL  string
}

// Feeds holds feeds.json.
type Feeds struct {
	SiteURL  string
	SiteName string
	RSS      bool
	Atom     bool
}

// Enabled reports whether at least one feed format is requested.
func (f Feeds) Enabled() bool {
	return f.RSS || f.Atom
}

// Homepage holds homepage.json.
type Homepage struct {
	Display       int
	PreviewLength int
}

// Site is the configuration read from Config/ on every rebuild.
type Site struct {
	Name      string
	TopLinks  []Link
	Copyright string
	Styles    map[string]string
	Feeds     Feeds
	Homepage  Homepage
}

// DefaultStyles returns every style token with its default value.
func DefaultStyles() map[string]string {
	out := make(map[string]string, len(StyleTokens))
	for k, v := range topStyleDefaults {
		out[k] = v
	}
	for k, v := range bottomStyleDefaults {
		out[k] = v
	}
	return out
}

// LoadSite reads the site configuration from configDir. legacyDir is an
// extra location searched for homepage.json (the metadata directory).
// A missing Config/ directory or a malformed feeds.json is fatal; every
// other file is optional.
func LoadSite(configDir, legacyDir string, log logrus.FieldLogger) (*Site, error) {
	info, err := os.Stat(configDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrConfigDirMissing, configDir)
	}

	site := &Site{Styles: DefaultStyles()}

	if site.Name, err = readTrimmed(filepath.Join(configDir, NameFile)); err != nil {
		return nil, err
	}
	if site.Copyright, err = readTrimmed(filepath.Join(configDir, CopyrightFile)); err != nil {
		return nil, err
	}
	if site.TopLinks, err = loadTopLinks(filepath.Join(configDir, TopLinksFile)); err != nil {
		return nil, err
	}
	for _, name := range []string{TopStyleFile, BottomStyleFile} {
		vars, err := loadStyleVars(filepath.Join(configDir, name))
		if err != nil {
			return nil, err
		}
		for k, v := range vars {
			site.Styles[k] = v
		}
	}

	feeds, err := loadFeeds(filepath.Join(configDir, FeedsFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.WithField("file", FeedsFile).Warn("feeds config not found, feeds disabled")
	case err != nil:
		return nil, err
	default:
		site.Feeds = feeds
	}

	site.Homepage = loadHomepage([]string{
		filepath.Join(configDir, HomepageFile),
		filepath.Join(legacyDir, HomepageFile),
	}, log)

	return site, nil
}

// readTrimmed returns the trimmed content of an optional file.
func readTrimmed(path string) (string, error) {
	data, err := readOptional(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readOptional reads path, returning nil for a missing file.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside Config/
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > MaxConfigFileLen {
		return nil, fmt.Errorf("%w: %s", ErrInputTooLarge, path)
	}
	return data, nil
}

// loadTopLinks parses "Name URL" lines. The name is the first field; the
// URL is the remainder. Lines with a single field are ignored.
func loadTopLinks(path string) ([]Link, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}
	var links []Link
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := fields[0]
		links = append(links, Link{Name: name, URL: strings.TrimSpace(line[len(name):])})
	}
	return links, scanner.Err()
}

// loadStyleVars parses `KEY "value"` lines, skipping blanks and # comments.
func loadStyleVars(path string) (map[string]string, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}
	vars := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := styleVarLine.FindStringSubmatch(line); m != nil {
			vars[m[1]] = m[2]
		}
	}
	return vars, scanner.Err()
}

// flag decodes 0, 1, true or false.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch s {
	case "", "null":
		*f = false
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = n == 1
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid flag %s", data)
	}
	*f = flag(b)
	return nil
}

type feedsFile struct {
	SiteURL  string `json:"siteURL"`
	SiteName string `json:"siteName"`
	RSS      flag   `json:"rss"`
	Atom     flag   `json:"atom"`
}

func loadFeeds(path string) (Feeds, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is inside Config/
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Feeds{}, err
		}
		return Feeds{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var raw feedsFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return Feeds{}, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return Feeds{
		SiteURL:  strings.TrimSpace(raw.SiteURL),
		SiteName: strings.TrimSpace(raw.SiteName),
		RSS:      bool(raw.RSS),
		Atom:     bool(raw.Atom),
	}, nil
}

type homepageFile struct {
	Display       *int `json:"display"`
	PreviewLength *int `json:"previewLength"`
}

// loadHomepage reads the first existing candidate. Missing or broken files
// yield the defaults.
func loadHomepage(candidates []string, log logrus.FieldLogger) Homepage {
	hp := Homepage{Display: DefaultDisplay, PreviewLength: DefaultPreviewLength}
	for _, path := range candidates {
		data, err := os.ReadFile(path) // #nosec G304 -- path is inside the project
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		entry := log.WithField("file", path)
		if err != nil {
			entry.WithError(err).Warn("homepage config unreadable, using defaults")
			return hp
		}
		var raw homepageFile
		if err := json.Unmarshal(data, &raw); err != nil {
			entry.WithError(err).Warn("homepage config malformed, using defaults")
			return hp
		}
		if raw.Display != nil && *raw.Display >= 0 {
			hp.Display = *raw.Display
		}
		if raw.PreviewLength != nil && *raw.PreviewLength >= 0 {
			hp.PreviewLength = *raw.PreviewLength
		}
		return hp
	}
	log.Debug("homepage config not found, using defaults")
	return hp
}
