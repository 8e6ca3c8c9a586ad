// Package analytics records project lifecycle events.
//
// Sinks are fire-and-forget: Log never returns an error and never waits on
// the network beyond a buffered publish. Delivery failures are logged at
// debug level and dropped.
package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// EventName identifies an analytics event.
type EventName string

const (
	EventFromURICreateProject   EventName = "from_uri_create_project"
	EventSwitchProject          EventName = "switch_project"
	EventDuplicateProjectSwitch EventName = "duplicate_project_switch"
	EventDeleteProject          EventName = "delete_project"
	EventProviderCreateProject  EventName = "provider_create_project"
)

// Event is one analytics record.
type Event struct {
	Name      EventName `json:"event"`
	ProjectID string    `json:"project_id,omitempty"`
	// ServerHash identifies the server without exposing its URL.
	ServerHash string    `json:"server_hash,omitempty"`
	Surface    string    `json:"surface,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(name EventName, projectID, serverURL, surface string) Event {
	e := Event{Name: name, ProjectID: projectID, Surface: surface, Timestamp: time.Now().UTC()}
	if serverURL != "" {
		e.ServerHash = HashServer(serverURL)
	}
	return e
}

// HashServer returns a short stable digest of a server URL.
func HashServer(serverURL string) string {
	sum := sha256.Sum256([]byte(serverURL))
	return hex.EncodeToString(sum[:8])
}

// Sink receives analytics events.
type Sink interface {
	Log(ctx context.Context, e Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Log(context.Context, Event) {}

// Multi fans an event out to several sinks.
type Multi []Sink

func (m Multi) Log(ctx context.Context, e Event) {
	for _, s := range m {
		if s != nil {
			s.Log(ctx, e)
		}
	}
}

// Recorder keeps events in memory. Useful in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Log(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []EventName {
	evs := r.Events()
	out := make([]EventName, len(evs))
	for i, e := range evs {
		out[i] = e.Name
	}
	return out
}
