package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/alnah/raven/internal/assets"
	"github.com/alnah/raven/internal/certs"
	"github.com/alnah/raven/internal/config"
	"github.com/alnah/raven/internal/fileutil"
	"github.com/alnah/raven/internal/project"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Project  projectInfo `json:"project"`
	Config   configInfo  `json:"config"`
	Cert     certInfo    `json:"certificate"`
	Env      envInfo     `json:"environment"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// projectInfo holds project layout results.
type projectInfo struct {
	Found  bool            `json:"found"`
	Root   string          `json:"root,omitempty"`
	Dirs   map[string]bool `json:"dirs,omitempty"`
	Locked bool            `json:"locked"`
}

// configInfo holds settings and Config/ results.
type configInfo struct {
	SettingsFile  string   `json:"settings_file,omitempty"`
	SettingsFound bool     `json:"settings_found"`
	SiteName      string   `json:"site_name,omitempty"`
	FeedsEnabled  bool     `json:"feeds_enabled"`
	Overrides     []string `json:"overrides,omitempty"` // Config/ assets replacing built-ins
	HTTPPort      int      `json:"http_port"`
	HTTPSPort     int      `json:"https_port"`
}

// certInfo holds certificate results.
type certInfo struct {
	Path      string `json:"path,omitempty"`
	Found     bool   `json:"found"`
	NotAfter  string `json:"not_after,omitempty"`
	ExpiresIn string `json:"expires_in,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
}

// dirCheck describes one project directory and how serious its absence is.
type dirCheck struct {
	name     string
	path     func(project.Layout) string
	required bool
	missing  string
}

var doctorDirs = []dirCheck{
	{name: project.DraftsDir, path: func(l project.Layout) string { return l.Drafts }, required: true},
	{name: project.ConfigDir, path: func(l project.Layout) string { return l.Config }, required: true},
	{name: project.UnpublishedDir, path: func(l project.Layout) string { return l.Unpublished }, missing: "publish has nothing to move"},
	{name: project.ImagesDir, path: func(l project.Layout) string { return l.Images }, missing: "pages will have no images"},
	{name: project.ArticlesHTML, path: func(l project.Layout) string { return l.HTMLOut }, missing: "run raven rebuild before raven serve"},
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	var common commonFlags
	fs := newFlagSet("doctor", env)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if _, err := parseCommand(fs, args, &common); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(&common, env.Now())

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(common *commonFlags, now time.Time) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env:    envInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}
	result.Env.Container, result.Env.ContainerHint = isContainer()

	if layout, ok := checkProject(result, common.root, now); ok {
		settings := checkConfig(result, layout, common.config)
		checkCertificate(result, layout, settings, now)
		checkPorts(result, settings)
	}

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkProject resolves the root and inspects its directories and lock.
func checkProject(result *doctorResult, root string, now time.Time) (project.Layout, bool) {
	layout, err := project.Resolve(root)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return project.Layout{}, false
	}
	result.Project.Found = true
	result.Project.Root = layout.Root
	result.Project.Dirs = make(map[string]bool, len(doctorDirs))

	for _, d := range doctorDirs {
		exists := fileutil.DirExists(d.path(layout))
		result.Project.Dirs[d.name] = exists
		switch {
		case exists:
		case d.required:
			result.Errors = append(result.Errors, fmt.Sprintf("%s/ missing from %s", d.name, layout.Root))
		default:
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s/ missing: %s", d.name, d.missing))
		}
	}

	if info, err := os.Stat(layout.LockFile()); err == nil {
		result.Project.Locked = true
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"lock file %s is %s old; remove it if no raven command is running",
			layout.LockFile(), units.HumanDuration(now.Sub(info.ModTime()))))
	}
	return layout, true
}

// checkConfig loads settings and the Config/ site files. It returns the
// settings to use for later checks, falling back to defaults on error.
func checkConfig(result *doctorResult, layout project.Layout, explicit string) *config.Settings {
	path := explicit
	if path == "" {
		path = filepath.Join(layout.Config, config.SettingsFileName)
	}
	result.Config.SettingsFile = path
	result.Config.SettingsFound = fileutil.FileExists(path)

	settings, err := config.LoadSettings(path, explicit != "")
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		settings = config.DefaultSettings()
	}
	result.Config.HTTPPort = settings.Server.HTTPPort
	result.Config.HTTPSPort = settings.Server.HTTPSPort

	if !result.Project.Dirs[project.ConfigDir] {
		return settings
	}

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	site, err := config.LoadSite(layout.Config, layout.Metadata, quiet)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return settings
	}
	result.Config.SiteName = site.Name
	if site.Name == "" {
		result.Warnings = append(result.Warnings, config.NameFile+" missing or empty: pages will have no site name")
	}
	result.Config.FeedsEnabled = site.Feeds.Enabled()
	if !fileutil.FileExists(filepath.Join(layout.Config, config.FeedsFile)) {
		result.Warnings = append(result.Warnings, config.FeedsFile+" missing: feeds disabled")
	}
	checkAssets(result, layout)
	return settings
}

// checkAssets records which templates and stylesheet Config/ overrides.
func checkAssets(result *doctorResult, layout project.Layout) {
	resolver, err := assets.NewAssetResolver(layout.Config)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	if src, err := resolver.StyleSource(assets.StylesheetName); err == nil && src == assets.SourceCustom {
		result.Config.Overrides = append(result.Config.Overrides, assets.StylesheetName+assets.StyleExt)
	}
	for _, name := range assets.TemplateNames {
		src, err := resolver.TemplateSource(name)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if src == assets.SourceCustom {
			result.Config.Overrides = append(result.Config.Overrides, name+assets.TemplateExt)
		}
	}
}

// checkCertificate inspects the certificate raven serve would use.
func checkCertificate(result *doctorResult, layout project.Layout, settings *config.Settings, now time.Time) {
	path := certPath(layout, settings.Server.CertFile)
	result.Cert.Path = path

	cert, err := certs.Load(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		result.Warnings = append(result.Warnings, "no certificate yet: raven serve will generate one")
		return
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("certificate unreadable (%v): raven serve will replace it", err))
		return
	}

	result.Cert.Found = true
	result.Cert.NotAfter = cert.Leaf.NotAfter.UTC().Format(time.RFC3339)
	switch {
	case certs.Expired(cert, now):
		result.Warnings = append(result.Warnings, "certificate expired: raven serve will replace it")
	case certs.ExpiresWithin(cert, now, settings.Server.RenewBefore.Std()):
		result.Cert.ExpiresIn = units.HumanDuration(cert.Leaf.NotAfter.Sub(now))
		result.Warnings = append(result.Warnings, "certificate inside the renewal window: raven serve will renew it")
	default:
		result.Cert.ExpiresIn = units.HumanDuration(cert.Leaf.NotAfter.Sub(now))
	}
}

// checkPorts warns about privileged ports for unprivileged users.
func checkPorts(result *doctorResult, settings *config.Settings) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		return
	}
	for _, port := range []int{settings.Server.HTTPPort, settings.Server.HTTPSPort} {
		if port > 0 && port < 1024 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("port %d is below 1024: raven serve needs elevated privileges", port))
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("RAVEN_CONTAINER") == "1" {
		return true, "RAVEN_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "raven doctor")
	fmt.Fprintln(w)

	// Project section
	fmt.Fprintln(w, "Project")
	if r.Project.Found {
		fmt.Fprintf(w, "  [OK] Root: %s\n", r.Project.Root)
		for _, d := range doctorDirs {
			if r.Project.Dirs[d.name] {
				fmt.Fprintf(w, "  [OK] %s/\n", d.name)
			}
		}
		if r.Project.Locked {
			fmt.Fprintln(w, "  [WARN] Lock file present")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Root not found")
	}
	fmt.Fprintln(w)

	// Config section
	if r.Project.Found {
		fmt.Fprintln(w, "Config")
		if r.Config.SettingsFound {
			fmt.Fprintf(w, "  [OK] Settings: %s\n", r.Config.SettingsFile)
		} else {
			fmt.Fprintln(w, "  [OK] Settings: defaults")
		}
		if r.Config.SiteName != "" {
			fmt.Fprintf(w, "  [OK] Site name: %s\n", r.Config.SiteName)
		}
		fmt.Fprintf(w, "  [OK] Ports: http %d, https %d\n", r.Config.HTTPPort, r.Config.HTTPSPort)
		if r.Config.FeedsEnabled {
			fmt.Fprintln(w, "  [OK] Feeds: enabled")
		}
		for _, name := range r.Config.Overrides {
			fmt.Fprintf(w, "  [OK] Custom %s\n", name)
		}
		fmt.Fprintln(w)

		fmt.Fprintln(w, "Certificate")
		if r.Cert.Found {
			fmt.Fprintf(w, "  [OK] %s (expires %s)\n", r.Cert.Path, r.Cert.NotAfter)
		} else {
			fmt.Fprintf(w, "  [WARN] %s not usable\n", r.Cert.Path)
		}
		fmt.Fprintln(w)
	}

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintln(w, "Status: Not ready")
	}
}
