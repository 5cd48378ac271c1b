package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alnah/raven/internal/fileutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - Regular file detection
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	writeFile(t, file, "x")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "existing file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "nope"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsURL - URL detection
// ---------------------------------------------------------------------------

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "https://example.com", want: true},
		{input: "http://example.com", want: true},
		{input: "/x", want: false},
		{input: "mailto:a@b", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsURL(tt.input); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestClearDir - Emptying output directories
// ---------------------------------------------------------------------------

func TestClearDir(t *testing.T) {
	t.Parallel()

	t.Run("removes files and subdirectories", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.html"), "a")
		writeFile(t, filepath.Join(dir, "Images", "b.png"), "b")

		if err := fileutil.ClearDir(dir); err != nil {
			t.Fatalf("ClearDir() error = %v", err)
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("ClearDir() left %d entries", len(entries))
		}
	})

	t.Run("creates missing directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		if err := fileutil.ClearDir(dir); err != nil {
			t.Fatalf("ClearDir() error = %v", err)
		}
		if !fileutil.DirExists(dir) {
			t.Error("ClearDir() did not create directory")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := fileutil.ClearDir(""); !errors.Is(err, fileutil.ErrEmptyPath) {
			t.Errorf("ClearDir(\"\") error = %v, want ErrEmptyPath", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestCopyFile / TestCopyDir - Asset copying
// ---------------------------------------------------------------------------

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "robots.txt")
	writeFile(t, src, "User-agent: *")
	dst := filepath.Join(dir, "out", "robots.txt")

	n, err := fileutil.CopyFile(src, dst)
	if err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}
	if n != int64(len("User-agent: *")) {
		t.Errorf("CopyFile() n = %d", n)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "User-agent: *" {
		t.Errorf("content = %q", data)
	}

	if _, err := fileutil.CopyFile(filepath.Join(dir, "missing"), dst); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("CopyFile(missing) error = %v, want ErrNotExist", err)
	}
}

func TestCopyDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "Images")
	writeFile(t, filepath.Join(src, "logo.png"), "png")
	writeFile(t, filepath.Join(src, "nested", "cat.jpg"), "jpg")
	dst := filepath.Join(dir, "out", "Images")
	writeFile(t, filepath.Join(dst, "stale.gif"), "old")

	n, err := fileutil.CopyDir(src, dst)
	if err != nil {
		t.Fatalf("CopyDir() error = %v", err)
	}
	if n != 6 {
		t.Errorf("CopyDir() n = %d, want 6", n)
	}
	if !fileutil.FileExists(filepath.Join(dst, "nested", "cat.jpg")) {
		t.Error("nested file not copied")
	}
	if fileutil.FileExists(filepath.Join(dst, "stale.gif")) {
		t.Error("stale file not removed")
	}

	if _, err := fileutil.CopyDir(filepath.Join(dir, "missing"), dst); !errors.Is(err, fileutil.ErrNotDirectory) {
		t.Errorf("CopyDir(missing) error = %v, want ErrNotDirectory", err)
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Atomic writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "1.json")
	writeFile(t, path, "old")

	if err := fileutil.WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", data, "new")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

// ---------------------------------------------------------------------------
// TestAcquireLock - Single-writer lock
// ---------------------------------------------------------------------------

func TestAcquireLock(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("acquire and release", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".raven.lock")
		lock, err := fileutil.AcquireLock(path, time.Minute, now)
		if err != nil {
			t.Fatalf("AcquireLock() error = %v", err)
		}
		if !fileutil.FileExists(path) {
			t.Fatal("lock file not created")
		}
		if err := lock.Release(); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
		if fileutil.FileExists(path) {
			t.Error("lock file not removed")
		}
		if err := lock.Release(); err != nil {
			t.Errorf("second Release() error = %v", err)
		}
	})

	t.Run("held lock", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".raven.lock")
		lock, err := fileutil.AcquireLock(path, time.Minute, now)
		if err != nil {
			t.Fatalf("AcquireLock() error = %v", err)
		}
		defer func() { _ = lock.Release() }()

		_, err = fileutil.AcquireLock(path, time.Minute, now)
		if !errors.Is(err, fileutil.ErrLocked) {
			t.Errorf("AcquireLock() error = %v, want ErrLocked", err)
		}
	})

	t.Run("stale lock is replaced", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".raven.lock")
		writeFile(t, path, "123")
		old := now.Add(-time.Hour)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}

		lock, err := fileutil.AcquireLock(path, 10*time.Minute, now)
		if err != nil {
			t.Fatalf("AcquireLock() error = %v", err)
		}
		_ = lock.Release()
	})

	t.Run("zero staleness never steals", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".raven.lock")
		writeFile(t, path, "123")
		old := now.Add(-24 * time.Hour)
		if err := os.Chtimes(path, old, old); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}

		_, err := fileutil.AcquireLock(path, 0, now)
		if !errors.Is(err, fileutil.ErrLocked) {
			t.Errorf("AcquireLock() error = %v, want ErrLocked", err)
		}
	})
}
