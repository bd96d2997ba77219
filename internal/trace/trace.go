// Package trace collects the optional structured debug trace of a call:
// skipped entries, ignore-rule parse issues, and per-stage timings.
package trace

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single trace entry
type Event struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Timing records how long one pipeline stage took
type Timing struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"durationNs"`
}

// Trace accumulates debug events for a single call. A nil *Trace is a valid
// no-op sink, so callers can pass traces through unconditionally.
type Trace struct {
	CallID string `json:"callId"`

	mu      sync.Mutex
	events  []Event
	timings []Timing
}

// New creates a trace with a fresh call ID
func New() *Trace {
	return &Trace{CallID: uuid.NewString()}
}

// Enabled reports whether events are being collected
func (t *Trace) Enabled() bool {
	return t != nil
}

// Add records an event for the given stage
func (t *Trace) Add(stage, format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, Event{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// AddPath records an event tied to a specific file or directory
func (t *Trace) AddPath(stage, path, format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, Event{Stage: stage, Message: fmt.Sprintf(format, args...), Path: path})
}

// Time records the duration of a stage
func (t *Trace) Time(stage string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timings = append(t.timings, Timing{Stage: stage, Duration: d})
}

// Events returns a copy of the collected events
func (t *Trace) Events() []Event {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Timings returns a copy of the collected stage timings
func (t *Trace) Timings() []Timing {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Timing, len(t.timings))
	copy(out, t.timings)
	return out
}

// Snapshot is the serializable form of a trace, embedded in results when the
// caller set the debug flag
type Snapshot struct {
	CallID  string   `json:"callId"`
	Events  []Event  `json:"events,omitempty"`
	Timings []Timing `json:"timings,omitempty"`
}

// Snapshot returns the serializable form of the trace, or nil for a nil trace
func (t *Trace) Snapshot() *Snapshot {
	if t == nil {
		return nil
	}
	return &Snapshot{CallID: t.CallID, Events: t.Events(), Timings: t.Timings()}
}
