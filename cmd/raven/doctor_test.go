package main

// Notes:
// - Tests use black-box approach: testing through runDoctorCmd() observable outputs.
// - Port warnings depend on the effective user id and are not asserted.
// - Container detection depends on the host and is not asserted.

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/raven/internal/certs"
)

func runDoctorJSON(t *testing.T, args ...string) (*doctorResult, int) {
	t.Helper()
	env, stdout, _ := testEnv()
	code := runDoctorCmd(append(args, "--json"), env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput was: %s", err, stdout.String())
	}
	return &result, code
}

func containsAny(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSONOutput - Healthy project
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	t.Parallel()

	root := setupProject(t, nil)
	writeTestFile(t, filepath.Join(root, "Config", "feeds.json"), `{"siteURL":"x.example","rss":1}`)

	result, code := runDoctorJSON(t, "--root", root)

	if code != ExitSuccess {
		t.Errorf("exit code = %d, want %d (errors: %v)", code, ExitSuccess, result.Errors)
	}
	if !result.Project.Found || result.Project.Root != root {
		t.Errorf("Project = %+v", result.Project)
	}
	if !result.Project.Dirs["Drafts"] || !result.Project.Dirs["Config"] {
		t.Errorf("Dirs = %v", result.Project.Dirs)
	}
	if result.Config.SiteName != "CLI Blog" || !result.Config.FeedsEnabled {
		t.Errorf("Config = %+v", result.Config)
	}
	if result.Config.SettingsFound {
		t.Error("SettingsFound should be false without raven.yaml")
	}
	if result.Env.OS == "" || result.Env.Arch == "" {
		t.Error("JSON should contain OS and Arch")
	}
	if result.Status != "warnings" {
		t.Errorf("Status = %q, want warnings", result.Status)
	}
	if !containsAny(result.Warnings, "no certificate yet") {
		t.Errorf("Warnings = %v, want missing certificate", result.Warnings)
	}
	if !containsAny(result.Warnings, "Articles-html/ missing") {
		t.Errorf("Warnings = %v, want missing output", result.Warnings)
	}
}

func TestRunDoctorCmd_Certificate(t *testing.T) {
	t.Parallel()

	root := setupProject(t, nil)
	pem, err := certs.Generate(certs.Options{CommonName: "localhost", ValidityDays: 365, Now: time.Now()})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	writeTestFile(t, filepath.Join(root, "server.pem"), string(pem))

	result, _ := runDoctorJSON(t, "--root", root)

	if !result.Cert.Found || result.Cert.NotAfter == "" || result.Cert.ExpiresIn == "" {
		t.Errorf("Cert = %+v", result.Cert)
	}
	if containsAny(result.Warnings, "certificate") {
		t.Errorf("Warnings = %v, want no certificate warning", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_Errors - Broken projects
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "root not found",
			setup:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") },
			wantErr: "project root not found",
		},
		{
			name: "drafts missing",
			setup: func(t *testing.T) string {
				root := setupProject(t, nil)
				if err := os.RemoveAll(filepath.Join(root, "Drafts")); err != nil {
					t.Fatal(err)
				}
				return root
			},
			wantErr: "Drafts/ missing",
		},
		{
			name: "malformed settings",
			setup: func(t *testing.T) string {
				root := setupProject(t, nil)
				writeTestFile(t, filepath.Join(root, "Config", "raven.yaml"), "server:\n  bogus: 1\n")
				return root
			},
			wantErr: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, code := runDoctorJSON(t, "--root", tt.setup(t))

			if code != ExitGeneral {
				t.Errorf("exit code = %d, want %d", code, ExitGeneral)
			}
			if result.Status != "errors" {
				t.Errorf("Status = %q, want errors", result.Status)
			}
			if !containsAny(result.Errors, tt.wantErr) {
				t.Errorf("Errors = %v, want %q", result.Errors, tt.wantErr)
			}
		})
	}
}

func TestRunDoctorCmd_LockFile(t *testing.T) {
	t.Parallel()

	root := setupProject(t, nil)
	writeTestFile(t, filepath.Join(root, ".raven.lock"), "1")

	result, _ := runDoctorJSON(t, "--root", root)
	if !result.Project.Locked || !containsAny(result.Warnings, "lock file") {
		t.Errorf("Project = %+v, Warnings = %v", result.Project, result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_TextOutput - Human-readable output
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_TextOutput(t *testing.T) {
	t.Parallel()

	env, stdout, _ := testEnv()
	runDoctorCmd([]string{"--root", setupProject(t, nil)}, env)
	output := stdout.String()

	for _, s := range []string{"raven doctor", "Project", "[OK] Root:", "Certificate", "Environment", "Status:"} {
		if !strings.Contains(output, s) {
			t.Errorf("output should contain %q\n%s", s, output)
		}
	}
}

func TestRunDoctorCmd_BadFlag(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv()
	if code := runDoctorCmd([]string{"--bogus"}, env); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "bogus") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunDoctorCmd_Overrides(t *testing.T) {
	t.Parallel()

	root := setupProject(t, nil)
	writeTestFile(t, filepath.Join(root, "Config", "page_top.txt"), "<header>{site_name}</header>")
	writeTestFile(t, filepath.Join(root, "Config", "global.css"), "body{}")

	result, _ := runDoctorJSON(t, "--root", root)

	if diff := cmp.Diff([]string{"global.css", "page_top.txt"}, result.Config.Overrides); diff != "" {
		t.Errorf("Overrides mismatch (-want +got):\n%s", diff)
	}
}
