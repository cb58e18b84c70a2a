package logging

import (
	"log/slog"
	"sort"
	"sync"

	"photorestore/internal/events"
)

// Observer renders core events as structured log lines. Progress is sampled
// per phase so large batches do not flood the log.
type Observer struct {
	logger *slog.Logger

	mu       sync.Mutex
	samplers map[string]*ProgressSampler
}

// NewObserver adapts core events into log lines on logger. A nil logger
// discards everything.
func NewObserver(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = NewNop()
	}
	return &Observer{logger: logger, samplers: make(map[string]*ProgressSampler)}
}

var _ events.Observer = (*Observer)(nil)

// Observe logs e at a level matching its severity.
func (o *Observer) Observe(e events.Event) {
	attrs := eventAttrs(e)
	switch e.Type {
	case events.PhaseStarted:
		o.resetSampler(e.Phase)
		o.logger.Info("phase started", Args(attrs...)...)
	case events.PhaseCompleted:
		o.logger.Info("phase completed", Args(attrs...)...)
	case events.Progress:
		if !o.sampler(e.Phase).ShouldLog(e.Completed, e.Total) {
			return
		}
		attrs = append(attrs, Float64(FieldProgressPercent, Percent(e.Completed, e.Total)))
		o.logger.Info("progress", Args(attrs...)...)
	case events.HashFailed:
		if kind, _ := e.Fields["hash"].(string); kind == "perceptual" {
			o.logger.Debug("perceptual hash unavailable", Args(attrs...)...)
			return
		}
		WarnWithContext(o.logger, "hash failed; file treated as unhashed", string(e.Type),
			append(attrs,
				String(FieldErrorHint, "check the file is readable"),
				String(FieldImpact, "file can only match by metadata"),
			)...)
	case events.HashTimedOut:
		WarnWithContext(o.logger, "hash timed out; file treated as unhashed", string(e.Type),
			append(attrs,
				String(FieldErrorHint, "raise hashing.unit_timeout_seconds or check the storage device"),
				String(FieldImpact, "file can only match by metadata"),
			)...)
	case events.LazyHashComputed:
		o.logger.Debug("perceptual hash computed", Args(attrs...)...)
	case events.IndexBuilt:
		o.logger.Info("reference index built", Args(attrs...)...)
	case events.Matched:
		kind, _ := e.Fields[FieldKind].(string)
		reason, _ := e.Fields["reason"].(string)
		attrs = append(attrs, DecisionAttrs("match", kind, reason)...)
		o.logger.Debug("subject compared", Args(attrs...)...)
	case events.FileSkipped:
		WarnWithContext(o.logger, "file skipped", string(e.Type),
			append(attrs,
				String(FieldErrorHint, "check the file is readable media"),
				String(FieldImpact, "file excluded from reconciliation"),
			)...)
	case events.StageFailed:
		ErrorWithContext(o.logger, "staging copy failed", string(e.Type),
			append(attrs, String(FieldErrorHint, "check free space and permissions on output_dir"))...)
	default:
		o.logger.Debug("event", Args(attrs...)...)
	}
}

func (o *Observer) sampler(phase string) *ProgressSampler {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.samplers[phase]
	if !ok {
		s = NewProgressSampler(10)
		o.samplers[phase] = s
	}
	return s
}

func (o *Observer) resetSampler(phase string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.samplers, phase)
}

func eventAttrs(e events.Event) []Attr {
	attrs := []Attr{String(FieldEventType, string(e.Type))}
	if e.Phase != "" {
		attrs = append(attrs, String(FieldPhase, e.Phase))
	}
	if e.Path != "" {
		attrs = append(attrs, String(FieldPath, e.Path))
	}
	if e.Total > 0 || e.Completed > 0 {
		attrs = append(attrs, Int(FieldCompleted, e.Completed), Int(FieldTotal, e.Total))
	}
	if e.Elapsed > 0 {
		attrs = append(attrs, Duration("elapsed", e.Elapsed))
	}
	if e.Err != nil {
		attrs = append(attrs, Error(e.Err))
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, Any(k, e.Fields[k]))
	}
	return attrs
}
