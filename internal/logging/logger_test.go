package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photorestore/internal/config"
	"photorestore/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewConsoleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "photorestore.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{path},
		SessionID:   "sess-1",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "scan")
	logger.Info("walk finished", logging.Int(logging.FieldTotal, 3), logging.Int64("size_bytes", 2048))
	logger.Debug("hidden")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"INFO [scan] walk finished", "total=3", `size_bytes="2.0 KiB"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "session_id") {
		t.Fatalf("session_id should be hidden at info level: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
}

func TestNewJSONIncludesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photorestore.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}, SessionID: "sess-2"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Warn("careful")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"level":"warn"`, `"session_id":"sess-2"`, `"msg":"careful"`, `"ts":`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
}

func TestNewFromConfigCreatesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "nested", "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg, logging.NewSessionID())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("ready")

	if _, err := os.Stat(cfg.LogPath()); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestPruneLogsKeepsActiveAndRecent(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "photorestore-old.log")
	active := filepath.Join(dir, "photorestore.log")
	recent := filepath.Join(dir, "photorestore-new.log")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, active, recent, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := mustAge(t, 40)
	for _, p := range []string{old, active, other} {
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatal(err)
		}
	}

	removed := logging.PruneLogs(logging.NewNop(), dir, "", 30, active)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old log should be removed")
	}
	for _, p := range []string{active, recent, other} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s should remain: %v", p, err)
		}
	}
}

func TestPruneLogsDisabled(t *testing.T) {
	if got := logging.PruneLogs(nil, t.TempDir(), "", 0, ""); got != 0 {
		t.Fatalf("removed = %d", got)
	}
}
