package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testEnv returns an Environment writing to buffers.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{Now: time.Now, Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// setupProject creates a Raven project with config and the given drafts.
// Returns the project root.
func setupProject(t *testing.T, drafts map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Raven")
	for _, d := range []string{"Drafts", "Unpublished", "Config"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o750); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}
	writeTestFile(t, filepath.Join(root, "Config", "name.txt"), "CLI Blog\n")
	writeTestFile(t, filepath.Join(root, "Config", "toplinks.txt"), "Home /\n")
	writeTestFile(t, filepath.Join(root, "Config", "copyright.txt"), "(c) CLI\n")
	for name, content := range drafts {
		writeTestFile(t, filepath.Join(root, "Drafts", name), content)
	}
	return root
}
