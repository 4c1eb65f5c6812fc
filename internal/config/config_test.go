package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"switchboard/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != missing {
		t.Fatalf("expected resolved path %q, got %q", missing, resolved)
	}
	if cfg.Workflow.QueuePollInterval != 2 {
		t.Fatalf("expected default poll interval, got %d", cfg.Workflow.QueuePollInterval)
	}
	if !cfg.IsPHIIndustry("dental") {
		t.Fatal("expected dental in default PHI industries")
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
[workflow]
queue_poll_interval = 7
max_attempts = 2

[redaction]
phi_industries = ["Medical", " Dermatology "]

[logging]
format = "json"
level = "debug"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Workflow.QueuePollInterval != 7 {
		t.Fatalf("expected poll interval 7, got %d", cfg.Workflow.QueuePollInterval)
	}
	if cfg.Workflow.MaxAttempts != 2 {
		t.Fatalf("expected max attempts 2, got %d", cfg.Workflow.MaxAttempts)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if !cfg.IsPHIIndustry("DERMATOLOGY") {
		t.Fatal("expected normalized industry match")
	}
	if cfg.IsPHIIndustry("dental") {
		t.Fatal("file override should replace the default industry list")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		fragment string
	}{
		{
			"bad format",
			"[logging]\nformat = \"xml\"\n",
			"logging.format",
		},
		{
			"bad poll interval",
			"[workflow]\nqueue_poll_interval = 0\n",
			"queue_poll_interval",
		},
		{
			"heartbeat timeout too small",
			"[workflow]\nheartbeat_interval = 30\nheartbeat_timeout = 30\n",
			"heartbeat_timeout",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("error %q does not mention %q", err, tc.fragment)
			}
		})
	}
}

func TestIsPHIIndustry(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.IsPHIIndustry(" Medical ") {
		t.Fatal("expected trimmed, case-insensitive match")
	}
	if cfg.IsPHIIndustry("") {
		t.Fatal("empty industry must not match")
	}
	if cfg.IsPHIIndustry("plumbing") {
		t.Fatal("plumbing is not a PHI industry")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected sample format %q", cfg.Logging.Format)
	}
}
