// Package config loads the project settings file and the site configuration
// stored in the Config/ directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrInputTooLarge  = errors.New("config input exceeds maximum size")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// MaxInputSize limits settings input to prevent memory exhaustion (1MB).
const MaxInputSize = 1 << 20

// Field length limits.
const (
	MaxPathLength  = 4096
	MaxHostLength  = 253 // RFC 1035
	MaxTokenLength = 64
)

// SettingsFileName is the settings file looked up in Config/.
const SettingsFileName = "raven.yaml"

// Duration is a time.Duration read from YAML strings such as "72h".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(data []byte) error {
	var s string
	if err := yaml.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Settings holds every tunable of the pipeline and the server.
type Settings struct {
	Server ServerSettings `yaml:"server"`
	Build  BuildSettings  `yaml:"build"`
}

// ServerSettings configures the HTTP/HTTPS site server.
type ServerSettings struct {
	Host               string   `yaml:"host"`
	HTTPPort           int      `yaml:"http_port"`  // 0 disables the redirect listener
	HTTPSPort          int      `yaml:"https_port"` // 1-65535
	CertFile           string   `yaml:"cert_file"`  // relative to the project root
	CertCommonName     string   `yaml:"cert_common_name"`
	CertHosts          []string `yaml:"cert_hosts"` // extra DNS names or IPs
	CertValidityDays   int      `yaml:"cert_validity_days"`
	RenewBefore        Duration `yaml:"renew_before"`
	RenewCheckInterval Duration `yaml:"renew_check_interval"`
	TextSuffix         string   `yaml:"text_suffix"`
	NotFoundPage       string   `yaml:"not_found_page"`
	MainPage           string   `yaml:"main_page"`
	MetricsAddr        string   `yaml:"metrics_addr"` // empty disables /metrics
	ReadHeaderTimeout  Duration `yaml:"read_header_timeout"`
}

// BuildSettings configures the rebuild pipeline.
type BuildSettings struct {
	ImagePrefix    string   `yaml:"image_prefix"`
	LockStaleAfter Duration `yaml:"lock_stale_after"` // 0 never steals a lock
	HighlightStyle string   `yaml:"highlight_style"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			Host:               "0.0.0.0",
			HTTPPort:           80,
			HTTPSPort:          443,
			CertFile:           "server.pem",
			CertCommonName:     "localhost",
			CertValidityDays:   365,
			RenewBefore:        Duration(72 * time.Hour),
			RenewCheckInterval: Duration(12 * time.Hour),
			TextSuffix:         ".text",
			NotFoundPage:       "404.html",
			MainPage:           "main.html",
			ReadHeaderTimeout:  Duration(10 * time.Second),
		},
		Build: BuildSettings{
			ImagePrefix:    "../Images/",
			LockStaleAfter: Duration(10 * time.Minute),
			HighlightStyle: "monokai",
		},
	}
}

// Validate checks ranges and lengths.
func (s *Settings) Validate() error {
	srv := s.Server
	if err := validateFieldLength("server.host", srv.Host, MaxHostLength); err != nil {
		return err
	}
	if srv.HTTPPort < 0 || srv.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port: must be between 0 and 65535, got %d", ErrInvalidConfig, srv.HTTPPort)
	}
	if srv.HTTPSPort < 1 || srv.HTTPSPort > 65535 {
		return fmt.Errorf("%w: server.https_port: must be between 1 and 65535, got %d", ErrInvalidConfig, srv.HTTPSPort)
	}
	if srv.HTTPPort != 0 && srv.HTTPPort == srv.HTTPSPort {
		return fmt.Errorf("%w: server.http_port and server.https_port must differ", ErrInvalidConfig)
	}
	if srv.CertFile == "" {
		return fmt.Errorf("%w: server.cert_file: required", ErrInvalidConfig)
	}
	if err := validateFieldLength("server.cert_file", srv.CertFile, MaxPathLength); err != nil {
		return err
	}
	if srv.CertCommonName == "" {
		return fmt.Errorf("%w: server.cert_common_name: required", ErrInvalidConfig)
	}
	if err := validateFieldLength("server.cert_common_name", srv.CertCommonName, MaxHostLength); err != nil {
		return err
	}
	for i, h := range srv.CertHosts {
		if err := validateFieldLength(fmt.Sprintf("server.cert_hosts[%d]", i), h, MaxHostLength); err != nil {
			return err
		}
	}
	if srv.CertValidityDays < 1 {
		return fmt.Errorf("%w: server.cert_validity_days: must be positive, got %d", ErrInvalidConfig, srv.CertValidityDays)
	}
	if srv.RenewBefore < 0 {
		return fmt.Errorf("%w: server.renew_before: must not be negative", ErrInvalidConfig)
	}
	if srv.RenewCheckInterval <= 0 {
		return fmt.Errorf("%w: server.renew_check_interval: must be positive", ErrInvalidConfig)
	}
	if !strings.HasPrefix(srv.TextSuffix, ".") || len(srv.TextSuffix) < 2 || strings.ContainsAny(srv.TextSuffix, `/\`) {
		return fmt.Errorf("%w: server.text_suffix: must look like \".text\", got %q", ErrInvalidConfig, srv.TextSuffix)
	}
	if err := validateFieldLength("server.text_suffix", srv.TextSuffix, MaxTokenLength); err != nil {
		return err
	}
	for field, page := range map[string]string{"server.not_found_page": srv.NotFoundPage, "server.main_page": srv.MainPage} {
		if page == "" || strings.ContainsAny(page, `/\`) {
			return fmt.Errorf("%w: %s: must be a file name, got %q", ErrInvalidConfig, field, page)
		}
	}
	if srv.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("%w: server.read_header_timeout: must be positive", ErrInvalidConfig)
	}

	if err := validateFieldLength("build.image_prefix", s.Build.ImagePrefix, MaxPathLength); err != nil {
		return err
	}
	if s.Build.LockStaleAfter < 0 {
		return fmt.Errorf("%w: build.lock_stale_after: must not be negative", ErrInvalidConfig)
	}
	if err := validateFieldLength("build.highlight_style", s.Build.HighlightStyle, MaxTokenLength); err != nil {
		return err
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadSettings reads settings from path over the defaults. When required is
// false a missing file yields the defaults; otherwise it is
// ErrConfigNotFound. Unknown keys are rejected.
func LoadSettings(path string, required bool) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path) // #nosec G304 -- settings path is user-provided
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if required {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return settings, nil
		}
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	if err := decodeStrict(data, settings); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// decodeStrict unmarshals YAML rejecting unknown fields. Empty input leaves
// v unchanged.
func decodeStrict(data []byte, v any) error {
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	return yaml.UnmarshalWithOptions(data, v, yaml.Strict())
}

// MarshalSettings renders settings as YAML, for the doctor report.
func MarshalSettings(s *Settings) ([]byte, error) {
	return yaml.Marshal(s)
}
