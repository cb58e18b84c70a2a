package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photorestore/internal/config"
)

func TestCheckDirectoryAccessOK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir(), true)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccessNotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), false)
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail, got %+v", result)
	}
}

func TestCheckDirectoryAccessNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckDirectoryAccess("test", f, false).Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritableParentMissingLeaf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b")
	result := CheckWritableParent("Output", path)
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCheckDistinctCorpora(t *testing.T) {
	base := t.TempDir()
	cases := []struct {
		subject, reference string
		want               bool
	}{
		{filepath.Join(base, "a"), filepath.Join(base, "b"), true},
		{filepath.Join(base, "a"), filepath.Join(base, "a"), false},
		{filepath.Join(base, "a", "sub"), filepath.Join(base, "a"), false},
		{filepath.Join(base, "a"), filepath.Join(base, "a", "sub"), false},
		{filepath.Join(base, "ab"), filepath.Join(base, "a"), true},
	}
	for _, tc := range cases {
		if got := CheckDistinctCorpora(tc.subject, tc.reference).Passed; got != tc.want {
			t.Errorf("CheckDistinctCorpora(%s, %s) = %v, want %v", tc.subject, tc.reference, got, tc.want)
		}
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	results := CheckBinaries(context.Background(), []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary", Optional: true},
		{Name: "Empty"},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Passed {
		t.Fatalf("expected present binary, got %+v", results[0])
	}
	if results[1].Passed || !results[1].Optional || results[1].Detail == "" {
		t.Fatalf("unexpected missing result %+v", results[1])
	}
	if results[2].Passed {
		t.Fatal("empty command should fail")
	}
}

func TestRunAllAndErr(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SubjectDir = filepath.Join(base, "subject")
	cfg.Paths.ReferenceDir = filepath.Join(base, "reference")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	if err := os.MkdirAll(cfg.Paths.SubjectDir, 0o755); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), &cfg)
	err := Err(results)
	if err == nil || !strings.Contains(err.Error(), "Reference directory") {
		t.Fatalf("expected reference failure, got %v", err)
	}

	if err := os.MkdirAll(cfg.Paths.ReferenceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", t.TempDir())
	results = RunAll(context.Background(), &cfg)
	if err := Err(results); err != nil {
		t.Fatalf("missing ffprobe should not fail the run: %v", err)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("nil config should produce no results")
	}
}
