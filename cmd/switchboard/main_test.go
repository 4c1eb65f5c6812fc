package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"switchboard/internal/calls"
	"switchboard/internal/config"
	"switchboard/internal/queue"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, filepath.Join(base, "data"), filepath.Join(base, "logs"))

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		configPath: configPath,
		baseDir:    base,
	}

	t.Cleanup(func() {
		store.Close()
	})

	return env
}

func writeTestConfig(t *testing.T, path, dataDir, logDir string) {
	t.Helper()
	content := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n", dataDir, logDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got %q", want, output)
	}
}

func enqueueCall(t *testing.T, env *cliTestEnv, callID string) *queue.Item {
	t.Helper()
	item, _, err := env.store.IngestEvent(context.Background(), calls.EndedEvent{
		BusinessID:      "biz-1",
		CallID:          callID,
		DurationSeconds: 60,
		Transcript:      `[{"role":"user","content":"how much is a visit"}]`,
	})
	if err != nil {
		t.Fatalf("IngestEvent: %v", err)
	}
	return item
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate", "--path", env.configPath}, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init without --overwrite to refuse existing file")
	}
}

func TestCLIQueueCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	enqueueCall(t, env, "call-alpha")
	failed := enqueueCall(t, env, "call-beta")
	failed.SetFailed("stage blew up")
	if err := env.store.Update(ctx, failed); err != nil {
		t.Fatalf("update failed item: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "pending")
	requireContains(t, out, "failed")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "call-alpha")
	requireContains(t, out, "call-beta")

	out, _, err = runCLI(t, []string{"queue", "list", "--status", "failed"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list --status: %v", err)
	}
	requireContains(t, out, "call-beta")
	if strings.Contains(out, "call-alpha") {
		t.Fatalf("status filter leaked pending item: %q", out)
	}

	out, _, err = runCLI(t, []string{"queue", "retry"}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 failed items")

	retried, err := env.store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID after retry: %v", err)
	}
	if retried.Status != queue.StatusPending {
		t.Fatalf("expected retried item pending, got %s", retried.Status)
	}

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared 2 queue items")

	out, _, err = runCLI(t, []string{"queue", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("queue status after clear: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestCLIIngestProcessAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	eventPath := filepath.Join(env.baseDir, "event.json")
	payload := `{"businessId":"biz-1","callId":"call-cli","callerPhone":"+15550001111","duration":120,"transcript":"[{\"role\":\"user\",\"content\":\"how much is a cleaning\"}]","vapiCallCost":0.11}`
	if err := os.WriteFile(eventPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write event file: %v", err)
	}

	out, _, err := runCLI(t, []string{"ingest", eventPath}, env.configPath)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, out, "Enqueued call call-cli")

	out, _, err = runCLI(t, []string{"ingest", eventPath}, env.configPath)
	if err != nil {
		t.Fatalf("duplicate ingest: %v", err)
	}
	requireContains(t, out, "already enqueued")

	out, _, err = runCLI(t, []string{"queue", "process", "--max-steps", "30"}, env.configPath)
	if err != nil {
		t.Fatalf("queue process: %v", err)
	}
	requireContains(t, out, "Queue settled")
	requireContains(t, out, "1 completed")

	out, _, err = runCLI(t, []string{"calls", "show", "call-cli"}, env.configPath)
	if err != nil {
		t.Fatalf("calls show: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "Total")
	requireContains(t, out, "$0.1299")
}

func TestCLIBusinessCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"business", "add", "biz-dental", "--name", "Lakeside Dental", "--industry", "dental"}, env.configPath)
	if err != nil {
		t.Fatalf("business add: %v", err)
	}
	requireContains(t, out, "Saved business biz-dental")

	out, _, err = runCLI(t, []string{"business", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("business list: %v", err)
	}
	requireContains(t, out, "Lakeside Dental")
	requireContains(t, out, "Dental")
}

func TestCLIRouteRedactCost(t *testing.T) {
	out, _, err := runCLI(t, []string{"route", "how", "much", "does", "insurance", "cover"}, "")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	requireContains(t, out, "structured")
	requireContains(t, out, "0.9")

	out, stderr, err := runCLI(t, []string{"redact", "my", "SSN", "is", "123-45-6789"}, "")
	if err != nil {
		t.Fatalf("redact: %v", err)
	}
	requireContains(t, out, "[SSN REDACTED]")
	requireContains(t, stderr, "Redacted 1 segment(s)")

	out, _, err = runCLI(t, []string{"redact", "--transcript", `[{"role":"user","content":"my SSN is 123-45-6789"}]`}, "")
	if err != nil {
		t.Fatalf("redact --transcript: %v", err)
	}
	requireContains(t, out, "[SSN REDACTED]")

	out, _, err = runCLI(t, []string{"cost", "--duration", "120"}, "")
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	requireContains(t, out, "$0.2200")

	out, _, err = runCLI(t, []string{"cost", "--duration", "120", "--detailed", "--telephony", "0.11"}, "")
	if err != nil {
		t.Fatalf("cost --detailed: %v", err)
	}
	requireContains(t, out, "$0.1299")
	requireContains(t, out, "750 characters")
}
