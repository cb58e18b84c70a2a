package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"photorestore/internal/config"
	"photorestore/internal/strategy"
)

func TestLoadDefaultConfigExpandsPathsAndUsesEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("PHOTORESTORE_SUBJECT_DIR", "~/amazon")
	t.Setenv("PHOTORESTORE_REFERENCE_DIR", "~/icloud")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.SubjectDir != filepath.Join(tempHome, "amazon") {
		t.Fatalf("unexpected subject dir: %q", cfg.Paths.SubjectDir)
	}
	if cfg.Paths.ReferenceDir != filepath.Join(tempHome, "icloud") {
		t.Fatalf("unexpected reference dir: %q", cfg.Paths.ReferenceDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "photorestore-output") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, ".cache", "photorestore") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.LogPath() != filepath.Join(tempHome, ".local", "share", "photorestore", "logs", "photorestore.log") {
		t.Fatalf("unexpected log path: %q", cfg.LogPath())
	}
	if !cfg.Matching.LazyPerceptual || !cfg.Hashing.CacheEnabled {
		t.Fatal("expected lazy hashing and cache enabled by default")
	}
	if err := cfg.RequireCorpora(); err != nil {
		t.Fatalf("RequireCorpora: %v", err)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "photorestore.toml")
	content := `
[paths]
subject_dir = "/data/amazon"
reference_dir = "/data/icloud"

[matching]
perceptual_match_threshold = 4
perceptual_uncertain_threshold = 12
date_tolerance_seconds = 60

[hashing]
workers = 3
unit_timeout_seconds = 30

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Hashing.Workers != 3 || cfg.UnitTimeout() != 30*time.Second {
		t.Fatalf("hashing not applied: %+v", cfg.Hashing)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}

	policy := cfg.MatchPolicy()
	if policy.PerceptualMatchThreshold != 4 || policy.PerceptualUncertainThreshold != 12 {
		t.Fatalf("unexpected thresholds: %+v", policy)
	}
	if policy.DateTolerance != time.Minute {
		t.Fatalf("unexpected date tolerance: %v", policy.DateTolerance)
	}
	if policy.SizeTolerance != strategy.DefaultPolicy().SizeTolerance {
		t.Fatalf("unset tolerance should keep default: %v", policy.SizeTolerance)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"uncertain below match", "[matching]\nperceptual_match_threshold = 8\nperceptual_uncertain_threshold = 4\n", "perceptual_uncertain_threshold"},
		{"bad size tolerance", "[matching]\nsize_tolerance = 1.5\n", "size_tolerance"},
		{"negative timeout", "[hashing]\nunit_timeout_seconds = -1\n", "unit_timeout_seconds"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"unknown key", "[paths]\nlibrary_dir = \"/x\"\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireCorpora(t *testing.T) {
	cfg := config.Default()
	if err := cfg.RequireCorpora(); err == nil {
		t.Fatal("expected error for missing subject dir")
	}
	cfg.Paths.SubjectDir = "/data/a"
	cfg.Paths.ReferenceDir = "/data/a/"
	if err := cfg.RequireCorpora(); err == nil {
		t.Fatal("expected error for identical directories")
	}
	cfg.Paths.ReferenceDir = "/data/b"
	if err := cfg.RequireCorpora(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw config.Config
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil || !exists {
		t.Fatalf("Load sample: exists=%v err=%v", exists, err)
	}
	if cfg.MatchPolicy() != strategy.DefaultPolicy() {
		t.Fatalf("sample thresholds drifted from defaults: %+v", cfg.MatchPolicy())
	}

	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(encoded), "perceptual_match_threshold = 5") {
		t.Fatalf("encoded config missing matching section:\n%s", encoded)
	}
}

func TestPairOptions(t *testing.T) {
	cfg := config.Default()
	if opts := cfg.PairOptions(); opts.PerFolder {
		t.Fatal("pairs should group across folders by default")
	}
	cfg.LivePhotos.PerFolder = true
	cfg.LivePhotos.IncludeImageOnly = true
	opts := cfg.PairOptions()
	if !opts.PerFolder || !opts.IncludeImageOnly {
		t.Fatalf("PairOptions = %+v", opts)
	}
}
