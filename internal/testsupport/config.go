package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"photorestore/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The subject and reference corpora are created empty.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SubjectDir = filepath.Join(base, "subject")
	cfgVal.Paths.ReferenceDir = filepath.Join(base, "reference")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	for _, dir := range []string{cfgVal.Paths.SubjectDir, cfgVal.Paths.ReferenceDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithoutCache disables the hash cache.
func WithoutCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hashing.CacheEnabled = false
	}
}

// WithStubbedBinary writes an executable shell script named name and
// prepends its directory to PATH for the duration of the test.
func WithStubbedBinary(name, script string) ConfigOption {
	return func(b *configBuilder) {
		StubBinary(b.t, filepath.Join(b.baseDir, "bin"), name, script)
	}
}

// StubBinary writes an executable shell script into dir and prepends dir to
// PATH for the duration of the test.
func StubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SubjectDir)
}
