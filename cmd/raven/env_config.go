package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// envConfig holds configuration from environment variables.
type envConfig struct {
	Root       string // RAVEN_ROOT: project root
	ConfigPath string // RAVEN_CONFIG: settings file path
	LogLevel   string // RAVEN_LOG_LEVEL: debug, info, warn, error
	LogFormat  string // RAVEN_LOG_FORMAT: text or json
}

// knownEnvVars lists valid RAVEN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"RAVEN_ROOT":       true,
	"RAVEN_CONFIG":     true,
	"RAVEN_LOG_LEVEL":  true,
	"RAVEN_LOG_FORMAT": true,
	"RAVEN_CONTAINER":  true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		Root:       os.Getenv("RAVEN_ROOT"),
		ConfigPath: os.Getenv("RAVEN_CONFIG"),
		LogLevel:   os.Getenv("RAVEN_LOG_LEVEL"),
		LogFormat:  os.Getenv("RAVEN_LOG_FORMAT"),
	}
}

// warnUnknownEnvVars prints warnings for unrecognized RAVEN_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "RAVEN_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig fills flag values the user left empty.
// Priority: CLI flags > env vars > settings file > defaults.
func applyEnvConfig(env *envConfig, flags *commonFlags) {
	if env.Root != "" && flags.root == "" {
		flags.root = env.Root
	}
	if env.ConfigPath != "" && flags.config == "" {
		flags.config = env.ConfigPath
	}
	if env.LogLevel != "" && flags.logLevel == "" {
		flags.logLevel = env.LogLevel
	}
	if env.LogFormat != "" && flags.logFormat == "" {
		flags.logFormat = env.LogFormat
	}
}
