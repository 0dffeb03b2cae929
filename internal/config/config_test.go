package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "makina404.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ParsesAllFields(t *testing.T) {
	path := writeConfig(t, `
input: targets.txt
tool: /usr/local/bin/rapiddns
webhook_url: https://discord.com/api/webhooks/1/token
probe_concurrency: 50
capture_concurrency: 3
http_timeout: 5s
browser_timeout: 20s
user_agent: custom-agent/1.0
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.Input != "targets.txt" {
		t.Errorf("input = %q", f.Input)
	}
	if f.Tool != "/usr/local/bin/rapiddns" {
		t.Errorf("tool = %q", f.Tool)
	}
	if f.ProbeConcurrency != 50 || f.CaptureConcurrency != 3 {
		t.Errorf("concurrency = %d/%d, want 50/3", f.ProbeConcurrency, f.CaptureConcurrency)
	}
	if f.HTTPTimeout != 5*time.Second {
		t.Errorf("http_timeout = %v, want 5s", f.HTTPTimeout)
	}
	if f.BrowserTimeout != 20*time.Second {
		t.Errorf("browser_timeout = %v, want 20s", f.BrowserTimeout)
	}
}

func TestLoad_PartialFileLeavesZeroValues(t *testing.T) {
	path := writeConfig(t, "input: other.txt\n")

	f, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Input != "other.txt" {
		t.Errorf("input = %q", f.Input)
	}
	if f.ProbeConcurrency != 0 || f.HTTPTimeout != 0 {
		t.Errorf("unset fields should stay zero, got %d / %v", f.ProbeConcurrency, f.HTTPTimeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "input: [broken\n")); err == nil {
		t.Error("expected error for invalid YAML")
	}
	if _, err := Load(writeConfig(t, "probe_concurrency: -5\n")); err == nil {
		t.Error("expected error for negative concurrency")
	}
}
