package staging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"photorestore/internal/asset"
	"photorestore/internal/report"
	"photorestore/internal/testsupport"
)

func subject(t *testing.T, dir, name string, video bool) *asset.Asset {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteFile(t, path, 64)
	return asset.New(path, 64, video)
}

func TestStageCopiesMissingAndUncertain(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	ref := asset.New("/ref/x.jpg", 1, false)

	missingA := subject(t, filepath.Join(src, "a"), "IMG_1.jpg", false)
	missingB := subject(t, filepath.Join(src, "b"), "IMG_1.jpg", false)
	uncertain := subject(t, src, "IMG_2.jpg", false)
	matched := subject(t, src, "IMG_3.jpg", false)
	pairImg := subject(t, src, "IMG_4.HEIC", false)
	pairVid := subject(t, src, "IMG_4.MOV", true)
	vidResult := asset.NoMatch(pairVid, "")

	log := report.NewLog()
	s := New(Options{OutputDir: out, Verify: true, CopyUncertain: true, Log: log})
	outcome, err := s.Stage(context.Background(),
		[]asset.Result{
			asset.NoMatch(missingA, ""),
			asset.NoMatch(missingB, ""),
			asset.NewMatch(uncertain, asset.KindUncertain, ref, 0.4, "close"),
			asset.NewMatch(matched, asset.KindExact, ref, 1, "same"),
		},
		[]asset.PairResult{{
			Pair:  asset.LivePair{Image: pairImg, Video: pairVid},
			Image: asset.NewMatch(pairImg, asset.KindExact, ref, 1, "same"),
			Video: &vidResult,
		}},
	)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if outcome.Copied != 4 || outcome.Failed != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
	want := map[asset.ID]string{
		missingA.ID:  filepath.Join(out, MissingDir, "IMG_1.jpg"),
		missingB.ID:  filepath.Join(out, MissingDir, "IMG_1_1.jpg"),
		uncertain.ID: filepath.Join(out, UncertainDir, "IMG_2.jpg"),
		pairVid.ID:   filepath.Join(out, MissingDir, "IMG_4.MOV"),
	}
	for id, dest := range want {
		if outcome.Staged[id] != dest {
			t.Fatalf("staged[%s] = %q, want %q", id, outcome.Staged[id], dest)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Fatalf("expected %s on disk: %v", dest, err)
		}
	}
	if len(log.Entries()) != 4 {
		t.Fatalf("log entries = %d", len(log.Entries()))
	}
}

func TestStageDryRunTouchesNothing(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	a := subject(t, filepath.Join(src, "a"), "IMG_1.jpg", false)
	b := subject(t, filepath.Join(src, "b"), "IMG_1.jpg", false)

	s := New(Options{OutputDir: out, DryRun: true})
	outcome, err := s.Stage(context.Background(), []asset.Result{asset.NoMatch(a, ""), asset.NoMatch(b, "")}, nil)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if outcome.Copied != 0 || len(outcome.Staged) != 2 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Staged[b.ID] != filepath.Join(out, MissingDir, "IMG_1_1.jpg") {
		t.Fatalf("planned = %q", outcome.Staged[b.ID])
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("dry run must not create the output directory")
	}
}

func TestStageSkipsUncertainWhenDisabled(t *testing.T) {
	src := t.TempDir()
	u := subject(t, src, "IMG_2.jpg", false)
	s := New(Options{OutputDir: t.TempDir()})
	outcome, err := s.Stage(context.Background(),
		[]asset.Result{asset.NewMatch(u, asset.KindUncertain, asset.New("/r.jpg", 1, false), 0.3, "")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.Staged) != 0 {
		t.Fatalf("staged = %v", outcome.Staged)
	}
}

func TestStageCopyFailureCountsAsError(t *testing.T) {
	log := report.NewLog()
	s := New(Options{OutputDir: t.TempDir(), Observer: log, Log: log})
	gone := asset.New(filepath.Join(t.TempDir(), "gone.jpg"), 1, false)

	outcome, err := s.Stage(context.Background(), []asset.Result{asset.NoMatch(gone, "")}, nil)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if outcome.Failed != 1 || len(outcome.Staged) != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if log.Errors() != 1 {
		t.Fatalf("errors = %d", log.Errors())
	}
}

func TestStageCancelled(t *testing.T) {
	src := t.TempDir()
	a := subject(t, src, "a.jpg", false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{OutputDir: t.TempDir()}).Stage(ctx, []asset.Result{asset.NoMatch(a, "")}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestAcquireLockIsExclusive(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	first, err := AcquireLock(out)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := AcquireLock(out); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock err = %v, want ErrLocked", err)
	}
	if err := first.Release(); err != nil {
		t.Fatal(err)
	}
	second, err := AcquireLock(out)
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	_ = second.Release()
	_ = second.Release()
}

func TestClean(t *testing.T) {
	out := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(out, MissingDir, "a.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(out, UncertainDir, "b.jpg"), 1)
	testsupport.WriteFile(t, filepath.Join(out, "report.json"), 1)

	result := Clean(context.Background(), out, nil)
	if len(result.Removed) != 2 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v", result)
	}
	if _, err := os.Stat(filepath.Join(out, "report.json")); err != nil {
		t.Fatal("report should survive cleanup")
	}
	if got := Clean(context.Background(), " ", nil); len(got.Removed) != 0 {
		t.Fatal("blank dir should be a no-op")
	}
}
