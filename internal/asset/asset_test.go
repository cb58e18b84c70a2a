package asset

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
)

func TestEqualUsesIdentifierOnly(t *testing.T) {
	a := New("/photos/IMG_0001.HEIC", 100, false)
	a.ContentHash = "abc"
	b := New("/photos/IMG_0001.HEIC", 999, true)
	c := New("/photos/IMG_0002.HEIC", 100, false)

	if !a.Equal(b) {
		t.Fatal("expected assets with the same ID to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected assets with different IDs to differ")
	}
	var nilAsset *Asset
	if !nilAsset.Equal(nil) {
		t.Fatal("expected nil assets to be equal")
	}
	if a.Equal(nil) {
		t.Fatal("expected non-nil asset to differ from nil")
	}
}

func TestAssetNameAndExt(t *testing.T) {
	a := New("/photos/2023/IMG_0001.HEIC", 1, false)
	if a.Name() != "IMG_0001.HEIC" {
		t.Fatalf("unexpected name %q", a.Name())
	}
	if a.Ext() != ".heic" {
		t.Fatalf("unexpected ext %q", a.Ext())
	}
}

func TestEnsurePerceptualHashRunsOnce(t *testing.T) {
	a := New("/photos/a.jpg", 1, false)
	var calls atomic.Int32
	compute := func(path string) string {
		calls.Add(1)
		return ""
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.EnsurePerceptualHash(compute)
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one computation, got %d", calls.Load())
	}
	if a.EnsurePerceptualHash(compute) {
		t.Fatal("expected memoized call to report no computation")
	}
}

func TestEnsurePerceptualHashSkipsVideosAndExistingHashes(t *testing.T) {
	video := New("/clips/a.mov", 1, true)
	if video.EnsurePerceptualHash(func(string) string { return "ffffffffffffffff" }) {
		t.Fatal("expected videos to be skipped")
	}
	if video.PerceptualHash != "" {
		t.Fatalf("video gained a perceptual hash: %q", video.PerceptualHash)
	}

	image := New("/photos/a.jpg", 1, false)
	image.PerceptualHash = "0000000000000001"
	if image.EnsurePerceptualHash(func(string) string { return "ffffffffffffffff" }) {
		t.Fatal("expected existing hash to be kept")
	}
	if image.PerceptualHash != "0000000000000001" {
		t.Fatalf("existing hash overwritten: %q", image.PerceptualHash)
	}
}

func TestExtensionClassification(t *testing.T) {
	tests := []struct {
		ext   string
		image bool
		video bool
	}{
		{".JPG", true, false},
		{"heic", true, false},
		{".tif", true, false},
		{".MOV", false, true},
		{"3gp", false, true},
		{".txt", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := IsImageExt(tt.ext); got != tt.image {
			t.Errorf("IsImageExt(%q) = %v, want %v", tt.ext, got, tt.image)
		}
		if got := IsVideoExt(tt.ext); got != tt.video {
			t.Errorf("IsVideoExt(%q) = %v, want %v", tt.ext, got, tt.video)
		}
		if got := IsMediaExt(tt.ext); got != (tt.image || tt.video) {
			t.Errorf("IsMediaExt(%q) = %v", tt.ext, got)
		}
	}
	if !IsVideoPath("/a/b/IMG_1.MOV") || IsImagePath("/a/b/IMG_1.MOV") {
		t.Fatal("path classification mismatch for .MOV")
	}
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		parsed, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if parsed != k {
			t.Fatalf("round trip mismatch: %v != %v", parsed, k)
		}
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := Kind(42).MarshalText(); err == nil {
		t.Fatal("expected marshal error for invalid kind")
	}

	payload, err := json.Marshal(map[string]Kind{"kind": KindUncertain})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"kind":"uncertain"}` {
		t.Fatalf("unexpected json %s", payload)
	}
}

func TestResultInvariants(t *testing.T) {
	subject := New("/a.jpg", 1, false)
	ref := New("/b.jpg", 1, false)

	exact := NewMatch(subject, KindExact, ref, 0.2, "hash")
	if exact.Confidence != 1.0 || exact.Matched != ref {
		t.Fatalf("exact invariant violated: %+v", exact)
	}

	none := NewMatch(subject, KindMetadata, nil, 0.9, "")
	if none.Kind != KindNoMatch || none.Confidence != 0 || none.Matched != nil {
		t.Fatalf("nil reference should degrade to no match: %+v", none)
	}
	if !none.IsMissing() {
		t.Fatal("expected no-match result to be missing")
	}

	clamped := NewMatch(subject, KindMetadata, ref, 1.7, "")
	if clamped.Confidence != 1 {
		t.Fatalf("expected clamp to 1, got %v", clamped.Confidence)
	}
	if ClampConfidence(-0.5) != 0 {
		t.Fatal("expected negative confidence to clamp to 0")
	}

	uncertain := NewMatch(subject, KindUncertain, ref, 0.4, "")
	if !uncertain.NeedsReview() || uncertain.IsMissing() {
		t.Fatalf("uncertain predicates wrong: %+v", uncertain)
	}
}

func TestResultBetterKeepsFirstOnTie(t *testing.T) {
	subject := New("/a.jpg", 1, false)
	first := NewMatch(subject, KindMetadata, New("/r1.jpg", 1, false), 0.7, "")
	tie := NewMatch(subject, KindMetadata, New("/r2.jpg", 1, false), 0.7, "")
	higher := NewMatch(subject, KindMetadata, New("/r3.jpg", 1, false), 0.85, "")

	if !first.Better(nil) {
		t.Fatal("any result beats nil")
	}
	if tie.Better(&first) {
		t.Fatal("tie must keep the earlier result")
	}
	if !higher.Better(&first) {
		t.Fatal("higher confidence must win")
	}
}

func TestPairResultAggregation(t *testing.T) {
	img := New("/IMG_1.HEIC", 1, false)
	vid := New("/IMG_1.MOV", 1, true)
	ref := New("/ref.MOV", 1, true)

	pair := LivePair{Image: img, Video: vid}
	if !pair.Complete() {
		t.Fatal("pair with video should be complete")
	}
	if (LivePair{Image: img}).Complete() {
		t.Fatal("pair without video should be incomplete")
	}

	videoExact := NewMatch(vid, KindExact, ref, 1, "")
	missingImage := PairResult{Pair: pair, Image: NoMatch(img, ""), Video: &videoExact}
	if !missingImage.IsMissing() {
		t.Fatal("pair with missing image must be missing even when video matches")
	}
	if missingImage.NeedsReview() {
		t.Fatal("missing pair must not need review")
	}

	videoUncertain := NewMatch(vid, KindUncertain, ref, 0.4, "")
	review := PairResult{Pair: pair, Image: NewMatch(img, KindExact, New("/r.heic", 1, false), 1, ""), Video: &videoUncertain}
	if review.IsMissing() || !review.NeedsReview() {
		t.Fatalf("expected review-only pair: missing=%v review=%v", review.IsMissing(), review.NeedsReview())
	}

	imageOnly := PairResult{Pair: LivePair{Image: img}, Image: NewMatch(img, KindPerceptual, ref, 0.95, "")}
	if imageOnly.IsMissing() || imageOnly.NeedsReview() {
		t.Fatal("matched image-only pair should be neither missing nor review")
	}
}
