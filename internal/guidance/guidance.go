package guidance

import (
	"log"
	"sync"
	"time"

	"github.com/tdawodu/waypoint/internal/types"
)

// LogSink writes guidance events to the standard logger. Useful as a
// development sink and as the voice-guidance stand-in in navd.
type LogSink struct{}

// Emit logs a single guidance event
func (LogSink) Emit(event types.GuidanceEvent) {
	switch event.Kind {
	case types.EventSessionStarted:
		log.Printf("Guidance: session started: %s", event.Instruction)
	case types.EventProgressUpdate:
		log.Printf("Guidance: %.0fm to next maneuver", event.DistanceRemaining)
	case types.EventArrivedAtStep:
		log.Printf("Guidance: %s", event.Instruction)
	case types.EventArrivedAtDestination:
		log.Printf("Guidance: arrived at destination")
	case types.EventSessionStopped:
		log.Printf("Guidance: session stopped")
	default:
		log.Printf("Guidance: unknown event kind %q", event.Kind)
	}
}

// MultiSink fans one event out to several sinks in order
type MultiSink []Sink

// Sink mirrors session.Sink so guidance does not depend on the session package
type Sink interface {
	Emit(event types.GuidanceEvent)
}

// Emit delivers the event to every sink
func (m MultiSink) Emit(event types.GuidanceEvent) {
	for _, sink := range m {
		sink.Emit(event)
	}
}

// Publisher is the messaging surface a PublishSink needs
type Publisher interface {
	PublishGuidanceEvent(event *types.GuidanceEvent) error
}

// PublishSink forwards guidance events to a message broker. Publish
// failures are logged, never propagated: guidance is best-effort and a
// broker hiccup must not disturb the session.
type PublishSink struct {
	publisher Publisher
	tripID    string
}

// NewPublishSink creates a sink that stamps events with the given trip
// ID. An empty tripID leaves whatever ID the event already carries.
func NewPublishSink(publisher Publisher, tripID string) *PublishSink {
	return &PublishSink{publisher: publisher, tripID: tripID}
}

// Emit publishes the event, tagging it with the sink's trip ID
func (p *PublishSink) Emit(event types.GuidanceEvent) {
	if p.tripID != "" {
		event.TripID = p.tripID
	}
	if err := p.publisher.PublishGuidanceEvent(&event); err != nil {
		log.Printf("Warning: Failed to publish guidance event: %v", err)
	}
}

// ThrottledSink gates ProgressUpdate events by time and by change in
// remaining distance, so a 1 Hz GPS stream does not flood voice or UI
// consumers. All other event kinds pass through untouched.
type ThrottledSink struct {
	next        Sink
	minInterval time.Duration
	minDeltaM   float64
	now         func() time.Time

	mu           sync.Mutex
	lastEmit     time.Time
	lastDistance float64
	hasEmitted   bool
}

// NewThrottledSink wraps next, suppressing progress updates closer
// together than minInterval unless the remaining distance moved by at
// least minDeltaM meters
func NewThrottledSink(next Sink, minInterval time.Duration, minDeltaM float64) *ThrottledSink {
	return &ThrottledSink{
		next:        next,
		minInterval: minInterval,
		minDeltaM:   minDeltaM,
		now:         time.Now,
	}
}

// Emit forwards the event unless it is a progress update inside the gate
func (t *ThrottledSink) Emit(event types.GuidanceEvent) {
	if event.Kind != types.EventProgressUpdate {
		// Step boundaries reset the gate so the next update goes through
		t.mu.Lock()
		t.hasEmitted = false
		t.mu.Unlock()
		t.next.Emit(event)
		return
	}

	t.mu.Lock()
	now := t.now()
	delta := t.lastDistance - event.DistanceRemaining
	if delta < 0 {
		delta = -delta
	}
	pass := !t.hasEmitted ||
		now.Sub(t.lastEmit) >= t.minInterval ||
		delta >= t.minDeltaM
	if pass {
		t.hasEmitted = true
		t.lastEmit = now
		t.lastDistance = event.DistanceRemaining
	}
	t.mu.Unlock()

	if pass {
		t.next.Emit(event)
	}
}
