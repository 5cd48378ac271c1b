package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "home", RootName)
	nested := filepath.Join(root, "Scripts", "deep")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	t.Run("finds root from nested directory", func(t *testing.T) {
		t.Parallel()

		got, err := FindRoot(nested)
		if err != nil {
			t.Fatalf("FindRoot() error = %v", err)
		}
		if got != root {
			t.Errorf("FindRoot() = %q, want %q", got, root)
		}
	})

	t.Run("finds root from root itself", func(t *testing.T) {
		t.Parallel()

		got, err := FindRoot(root)
		if err != nil {
			t.Fatalf("FindRoot() error = %v", err)
		}
		if got != root {
			t.Errorf("FindRoot() = %q, want %q", got, root)
		}
	})

	t.Run("falls through to second start", func(t *testing.T) {
		t.Parallel()

		got, err := FindRoot(base, nested)
		if err != nil {
			t.Fatalf("FindRoot() error = %v", err)
		}
		if got != root {
			t.Errorf("FindRoot() = %q, want %q", got, root)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, err := FindRoot(base)
		if !errors.Is(err, ErrRootNotFound) {
			t.Errorf("FindRoot() error = %v, want ErrRootNotFound", err)
		}
	})
}

func TestResolve_Explicit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	layout, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if layout.Drafts != filepath.Join(dir, DraftsDir) {
		t.Errorf("Drafts = %q", layout.Drafts)
	}
	if layout.LockFile() != filepath.Join(dir, LockFileName) {
		t.Errorf("LockFile() = %q", layout.LockFile())
	}

	_, err = Resolve(filepath.Join(dir, "missing"))
	if !errors.Is(err, ErrRootNotFound) {
		t.Errorf("Resolve(missing) error = %v, want ErrRootNotFound", err)
	}
}

func TestLayout_Require(t *testing.T) {
	t.Parallel()

	layout, err := NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	if err := os.MkdirAll(layout.Config, 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := layout.Require(layout.Config); err != nil {
		t.Errorf("Require(Config) error = %v", err)
	}
	if err := layout.Require(layout.Config, layout.Drafts); !errors.Is(err, ErrMissingDir) {
		t.Errorf("Require(Drafts) error = %v, want ErrMissingDir", err)
	}
}
