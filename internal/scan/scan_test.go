package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"photorestore/internal/events"
	"photorestore/internal/media/ffprobe"
	"photorestore/internal/testsupport"
)

func TestWalkFiltersAndOrders(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"b/IMG_2.JPG",
		"a/IMG_1.jpg",
		"a/clip.mov",
		"a/notes.txt",
		".hidden/IMG_3.jpg",
		"a/._IMG_1.jpg",
	} {
		testsupport.WriteFile(t, filepath.Join(root, rel), 10)
	}

	paths, err := Walk(context.Background(), root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{
		filepath.Join(root, "a", "IMG_1.jpg"),
		filepath.Join(root, "a", "clip.mov"),
		filepath.Join(root, "b", "IMG_2.JPG"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestWalkRejectsMissingRoot(t *testing.T) {
	if _, err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestDescribeImage(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "IMG_1.png")
	testsupport.WritePNG(t, path, testsupport.Pattern(40, 30, 0))
	mtime := time.Date(2020, 5, 17, 8, 30, 0, 0, time.Local)
	testsupport.SetModTime(t, path, mtime)

	s := New(Options{DisableProbe: true})
	a, err := s.Describe(context.Background(), path)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if a.IsVideo {
		t.Fatal("png classified as video")
	}
	if a.Dimensions == nil || a.Dimensions.Width != 40 || a.Dimensions.Height != 30 {
		t.Fatalf("dimensions = %+v", a.Dimensions)
	}
	if a.Timestamp != "2020-05-17T08:30:00" {
		t.Fatalf("timestamp = %q", a.Timestamp)
	}
	info, _ := os.Stat(path)
	if a.Size != info.Size() {
		t.Fatalf("size = %d, want %d", a.Size, info.Size())
	}
}

func TestDescribeUndecodableImageKeepsAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMG_1.heic")
	testsupport.WriteFile(t, path, 128)

	a, err := New(Options{DisableProbe: true}).Describe(context.Background(), path)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if a.Dimensions != nil {
		t.Fatalf("expected no dimensions, got %+v", a.Dimensions)
	}
	if !a.HasTimestamp() {
		t.Fatal("expected mtime fallback timestamp")
	}
}

func TestDescribeVideoUsesProber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IMG_1.MOV")
	testsupport.WriteFile(t, path, 2048)

	prober := ProberFunc(func(_ context.Context, p string) (ffprobe.VideoInfo, error) {
		return ffprobe.VideoInfo{Width: 1920, Height: 1080, Duration: 2.5, CreationTime: "2021-06-01T10:00:00Z"}, nil
	})
	a, err := New(Options{Prober: prober}).Describe(context.Background(), path)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if !a.IsVideo {
		t.Fatal("expected video")
	}
	if a.Duration == nil || *a.Duration != 2.5 {
		t.Fatalf("duration = %v", a.Duration)
	}
	if a.Dimensions == nil || a.Dimensions.Width != 1920 {
		t.Fatalf("dimensions = %+v", a.Dimensions)
	}
	if a.Timestamp != "2021-06-01T10:00:00Z" {
		t.Fatalf("timestamp = %q", a.Timestamp)
	}
}

func TestMissingProberDisablesFurtherProbes(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.mov", "b.mov", "c.mp4"} {
		testsupport.WriteFile(t, filepath.Join(root, name), 16)
	}
	var calls atomic.Int32
	prober := ProberFunc(func(context.Context, string) (ffprobe.VideoInfo, error) {
		calls.Add(1)
		return ffprobe.VideoInfo{}, ffprobe.ErrNotFound
	})

	assets, err := New(Options{Prober: prober, Workers: 1}).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("assets = %d, want 3", len(assets))
	}
	if calls.Load() != 1 {
		t.Fatalf("prober calls = %d, want 1", calls.Load())
	}
	for _, a := range assets {
		if a.Duration != nil || !a.HasTimestamp() {
			t.Fatalf("unexpected video metadata for %s", a.ID)
		}
	}
}

func TestScanPreferHEIC(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "IMG_1.HEIC"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "IMG_1.jpg"), 10)
	testsupport.WriteFile(t, filepath.Join(root, "IMG_2.jpg"), 10)

	assets, err := New(Options{PreferHEIC: true, DisableProbe: true}).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	got := make([]string, 0, len(assets))
	for _, a := range assets {
		got = append(got, a.Name())
	}
	if len(got) != 2 || got[0] != "IMG_1.HEIC" || got[1] != "IMG_2.jpg" {
		t.Fatalf("names = %v", got)
	}
}

func TestDescribeAllSkipsUnreadableAndReportsEvents(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.jpg")
	testsupport.WriteFile(t, good, 10)
	gone := filepath.Join(root, "gone.jpg")

	var (
		mu  sync.Mutex
		got []events.Event
	)
	obs := events.ObserverFunc(func(e events.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	assets, err := New(Options{Phase: "scan_subject", DisableProbe: true, Observer: obs}).
		DescribeAll(context.Background(), []string{good, gone})
	if err != nil {
		t.Fatalf("DescribeAll: %v", err)
	}
	if len(assets) != 1 || assets[0].Path() != good {
		t.Fatalf("assets = %v", assets)
	}

	var skipped, completed int
	for _, e := range got {
		switch e.Type {
		case events.FileSkipped:
			skipped++
			if e.Path != gone || e.Err == nil {
				t.Fatalf("unexpected skip event %+v", e)
			}
		case events.PhaseCompleted:
			completed++
			if e.Phase != "scan_subject" || e.Completed != 1 || e.Total != 2 {
				t.Fatalf("unexpected completion %+v", e)
			}
		}
	}
	if skipped != 1 || completed != 1 {
		t.Fatalf("skipped=%d completed=%d", skipped, completed)
	}
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "a.jpg"), 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Options{}).Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
