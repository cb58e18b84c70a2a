package matchindex

import (
	"errors"
	"fmt"

	"photorestore/internal/asset"
	"photorestore/internal/events"
	"photorestore/internal/phash"
)

// ErrInvalidCorpus reports a reference corpus the index cannot be built from.
var ErrInvalidCorpus = errors.New("invalid reference corpus")

// neighbourOffsets lists bucket offsets probed after the subject's own bucket.
var neighbourOffsets = []int{-1, 1, -16, 16, -17, 17, -15, 15, -256, 256, -4096, 4096}

// Index is an immutable view over the reference corpus.
type Index struct {
	corpus   []*asset.Asset
	exact    map[string]*asset.Asset
	compound map[Key][]*asset.Asset
	byDay    map[string][]*asset.Asset
	buckets  map[uint16][]*asset.Asset
	unusable int
}

// Build indexes the reference corpus. The slice is copied; assets are shared.
func Build(reference []*asset.Asset) (*Index, error) {
	return BuildObserved(reference, nil)
}

// BuildObserved is Build with an observer notified of reference assets whose
// perceptual hash cannot be bucketed. Such assets stay in every other
// structure and are reported as a perceptual HashFailed event.
func BuildObserved(reference []*asset.Asset, observer events.Observer) (*Index, error) {
	observer = events.OrNop(observer)
	idx := &Index{
		corpus:   make([]*asset.Asset, 0, len(reference)),
		exact:    make(map[string]*asset.Asset, len(reference)),
		compound: make(map[Key][]*asset.Asset),
		byDay:    make(map[string][]*asset.Asset),
		buckets:  make(map[uint16][]*asset.Asset),
	}
	seen := make(map[asset.ID]struct{}, len(reference))

	for i, a := range reference {
		if err := validate(i, a, seen); err != nil {
			return nil, err
		}
		seen[a.ID] = struct{}{}
		idx.corpus = append(idx.corpus, a)

		if a.HasContentHash() {
			idx.exact[a.ContentHash] = a
		}
		if key, ok := KeyOf(a); ok {
			idx.compound[key] = append(idx.compound[key], a)
			if key.HasDay {
				idx.byDay[key.Day] = append(idx.byDay[key.Day], a)
			}
		}
		if !a.HasPerceptualHash() {
			continue
		}
		prefix, err := phash.Prefix(a.PerceptualHash)
		if err != nil {
			idx.unusable++
			observer.Observe(events.Event{
				Type:   events.HashFailed,
				Path:   a.Path(),
				Err:    err,
				Fields: map[string]any{"hash": "perceptual", "stage": "index"},
			})
			continue
		}
		idx.buckets[prefix] = append(idx.buckets[prefix], a)
	}
	return idx, nil
}

func validate(pos int, a *asset.Asset, seen map[asset.ID]struct{}) error {
	if a == nil {
		return fmt.Errorf("%w: asset %d is nil", ErrInvalidCorpus, pos)
	}
	if a.ID == "" {
		return fmt.Errorf("%w: asset %d has empty identifier", ErrInvalidCorpus, pos)
	}
	if a.Size < 0 {
		return fmt.Errorf("%w: %s has negative size %d", ErrInvalidCorpus, a.ID, a.Size)
	}
	if _, dup := seen[a.ID]; dup {
		return fmt.Errorf("%w: duplicate identifier %s", ErrInvalidCorpus, a.ID)
	}
	return nil
}

// Len returns the corpus size.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.corpus)
}

// All returns the corpus in insertion order. Callers must not modify it.
func (idx *Index) All() []*asset.Asset {
	if idx == nil {
		return nil
	}
	return idx.corpus
}

// Exact looks up a reference asset by content hash.
func (idx *Index) Exact(contentHash string) (*asset.Asset, bool) {
	if idx == nil || contentHash == "" {
		return nil, false
	}
	a, ok := idx.exact[contentHash]
	return a, ok
}

// ByDimensionsAndDay returns reference assets sharing the subject's compound
// key. Undated subjects look up the undated bucket for their dimensions.
func (idx *Index) ByDimensionsAndDay(subject *asset.Asset) []*asset.Asset {
	if idx == nil {
		return nil
	}
	key, ok := KeyOf(subject)
	if !ok {
		return nil
	}
	return idx.compound[key]
}

// ByDay returns reference assets captured on the subject's day.
func (idx *Index) ByDay(subject *asset.Asset) []*asset.Asset {
	if idx == nil || subject == nil {
		return nil
	}
	day, ok := DayOf(subject.Timestamp)
	if !ok {
		return nil
	}
	return idx.byDay[day]
}

// PerceptualCandidates returns assets from the hash's own bucket followed by
// its neighbouring buckets, each in corpus order. A malformed hash yields nil.
func (idx *Index) PerceptualCandidates(hash string) []*asset.Asset {
	if idx == nil || len(idx.buckets) == 0 {
		return nil
	}
	prefix, err := phash.Prefix(hash)
	if err != nil {
		return nil
	}
	var out []*asset.Asset
	out = append(out, idx.buckets[prefix]...)
	for _, offset := range neighbourOffsets {
		neighbour := int(prefix) + offset
		if neighbour < 0 || neighbour > 0xFFFF {
			continue
		}
		out = append(out, idx.buckets[uint16(neighbour)]...)
	}
	return out
}

// Stats summarises index occupancy for logging.
type Stats struct {
	Assets       int
	ExactHashes  int
	CompoundKeys int
	Days         int
	Buckets      int
	WithoutDay   int
	WithoutPHash int
	Unusable     int
}

// Stats reports occupancy counts.
func (idx *Index) Stats() Stats {
	if idx == nil {
		return Stats{}
	}
	s := Stats{
		Assets:       len(idx.corpus),
		ExactHashes:  len(idx.exact),
		CompoundKeys: len(idx.compound),
		Days:         len(idx.byDay),
		Buckets:      len(idx.buckets),
		Unusable:     idx.unusable,
	}
	for _, a := range idx.corpus {
		if _, ok := DayOf(a.Timestamp); !ok {
			s.WithoutDay++
		}
		if !a.HasPerceptualHash() && !a.IsVideo {
			s.WithoutPHash++
		}
	}
	return s
}
