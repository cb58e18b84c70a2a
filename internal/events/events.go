// Package events defines the structured event sink the matching core reports
// through. The core never writes to the console; callers inject an Observer
// (see logging.NewObserver) to render events however they like.
package events

import "time"

// Type identifies an event.
type Type string

const (
	PhaseStarted     Type = "phase_started"
	PhaseCompleted   Type = "phase_completed"
	Progress         Type = "progress"
	HashFailed       Type = "hash_failed"
	HashTimedOut     Type = "hash_timed_out"
	LazyHashComputed Type = "lazy_hash_computed"
	IndexBuilt       Type = "index_built"
	Matched          Type = "matched"
	FileSkipped      Type = "file_skipped"
	StageFailed      Type = "stage_failed"
)

// Event is a single structured observation. Fields not relevant to Type are
// left at their zero value.
type Event struct {
	Type      Type
	Phase     string
	Path      string
	Completed int
	Total     int
	Elapsed   time.Duration
	Err       error
	Fields    map[string]any
}

// Observer receives events. Implementations must be safe for concurrent use.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f.
func (f ObserverFunc) Observe(e Event) { f(e) }

type nop struct{}

func (nop) Observe(Event) {}

// Nop returns an observer that discards events.
func Nop() Observer { return nop{} }

// OrNop returns o, or a discarding observer when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return nop{}
	}
	return o
}

// Multi fans events out to every non-nil observer in order.
func Multi(observers ...Observer) Observer {
	var kept []Observer
	for _, o := range observers {
		if o != nil {
			kept = append(kept, o)
		}
	}
	return ObserverFunc(func(e Event) {
		for _, o := range kept {
			o.Observe(e)
		}
	})
}
