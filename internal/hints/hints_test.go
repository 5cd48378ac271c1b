package hints

// ForPrivilegedPort tests cannot use t.Parallel() because they modify the
// package-level IsInContainer variable.

import (
	"strings"
	"testing"
)

func TestForPrivilegedPort(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()

	tests := []struct {
		name      string
		port      int
		container bool
		wantEmpty bool
		contains  string
	}{
		{name: "unprivileged", port: 8443, wantEmpty: true},
		{name: "zero", port: 0, wantEmpty: true},
		{name: "host", port: 443, contains: "CAP_NET_BIND_SERVICE"},
		{name: "container", port: 80, container: true, contains: "publish a high port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			IsInContainer = func() bool { return tt.container }
			hint := ForPrivilegedPort(tt.port)

			if tt.wantEmpty {
				if hint != "" {
					t.Errorf("expected empty hint, got %q", hint)
				}
				return
			}
			if !strings.Contains(hint, "raven.yaml") {
				t.Errorf("expected settings mention, got %q", hint)
			}
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForRootNotFound(t *testing.T) {
	t.Parallel()

	hint := ForRootNotFound("Raven")
	for _, want := range []string{"Raven", "--root", "RAVEN_ROOT"} {
		if !strings.Contains(hint, want) {
			t.Errorf("expected hint to contain %q, got %q", want, hint)
		}
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{name: "empty paths", paths: nil, contains: "--config"},
		{name: "with paths", paths: []string{"/blog/Raven/Config/raven.yaml"}, contains: "create /blog/Raven/Config/raven.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hint := ForConfigNotFound(tt.paths)
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForLockHeld(t *testing.T) {
	t.Parallel()

	hint := ForLockHeld("/blog/Raven/.raven.lock")
	if !strings.Contains(hint, "/blog/Raven/.raven.lock") {
		t.Errorf("expected lock path in hint, got %q", hint)
	}
}

func TestFormatHints_Empty(t *testing.T) {
	t.Parallel()

	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q", got)
	}
	if got := format(""); got != "" {
		t.Errorf("format(\"\") = %q", got)
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	// All hints should start with newline, spaces, and "hint:"
	hints := []string{
		ForRootNotFound("Raven"),
		ForLockHeld("x"),
		ForConfigNotFound(nil),
		ForConfigDirMissing("Config"),
		ForUnknownField(),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
