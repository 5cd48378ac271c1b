// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"strings"

	"github.com/alnah/raven/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForRootNotFound returns hints when no project root could be located.
func ForRootNotFound(rootName string) string {
	return formatHints([]string{
		fmt.Sprintf("run inside a directory named %s", rootName),
		"or pass --root /path/to/" + rootName,
		"or set RAVEN_ROOT",
	})
}

// ForPrivilegedPort returns hints for bind failures on ports below 1024.
func ForPrivilegedPort(port int) string {
	if port <= 0 || port >= 1024 {
		return ""
	}
	hints := []string{"ports below 1024 need elevated privileges; set server.http_port and server.https_port in raven.yaml"}
	if IsInContainer() {
		hints = append(hints, "publish a high port from the container instead")
	} else {
		hints = append(hints, "or grant CAP_NET_BIND_SERVICE to the binary")
	}
	return formatHints(hints)
}

// ForLockHeld returns hints when another pipeline run holds the lock.
func ForLockHeld(lockPath string) string {
	return format("another raven command is running; remove " + lockPath + " if it crashed")
}

// ForConfigNotFound returns hints for settings file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/raven.yaml"
	if len(searchedPaths) > 0 {
		hint += " or create " + searchedPaths[0]
	}
	return format(hint)
}

// ForConfigDirMissing returns hints when Config/ is absent from the root.
func ForConfigDirMissing(configDir string) string {
	return format("create " + configDir + " with name.txt, toplinks.txt and copyright.txt")
}

// ForUnknownField returns hints for templates that reference unknown fields.
func ForUnknownField() string {
	return format("escape literal braces as {{ and }} in Config templates")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
