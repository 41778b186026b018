package session

import (
	"errors"
	"time"

	"github.com/tdawodu/waypoint/internal/geo"
	"github.com/tdawodu/waypoint/internal/types"
)

// DefaultArrivalThresholdM is the radius in meters around a step's end
// location inside which the step counts as reached. GPS accuracy varies,
// so callers can tune it via NewWithThreshold.
const DefaultArrivalThresholdM = 30.0

// ErrInvalidRoute is returned by Start when the route has no steps
var ErrInvalidRoute = errors.New("route has no steps")

// Sink consumes guidance events emitted by a session. Delivery is
// synchronous and in order, one event per Start/OnFix/Stop call. Sinks
// that need throttling (e.g. voice output) must gate events themselves;
// the session emits on every fix unconditionally.
type Sink interface {
	Emit(event types.GuidanceEvent)
}

// Session tracks progress through a route from a stream of position
// fixes and emits guidance events.
//
// Session performs no internal locking. Start, OnFix and Stop must not
// run concurrently against the same instance; the owning controller is
// responsible for serializing calls.
type Session struct {
	sink       Sink
	thresholdM float64

	steps       []types.Step
	currentStep int
	active      bool
	lastFix     *types.PositionFix
}

// New creates a session with the default arrival threshold
func New(sink Sink) *Session {
	return NewWithThreshold(sink, DefaultArrivalThresholdM)
}

// NewWithThreshold creates a session with a custom arrival threshold in meters
func NewWithThreshold(sink Sink, thresholdM float64) *Session {
	if thresholdM <= 0 {
		thresholdM = DefaultArrivalThresholdM
	}
	return &Session{
		sink:       sink,
		thresholdM: thresholdM,
	}
}

// Start begins navigating the given route. Calling Start on an active
// session replaces the prior route atomically and re-emits
// SessionStarted. The session state is untouched if the route is invalid.
func (s *Session) Start(route *types.Route) error {
	if route == nil {
		return ErrInvalidRoute
	}
	steps := route.Steps()
	if len(steps) == 0 {
		return ErrInvalidRoute
	}

	s.steps = steps
	s.currentStep = 0
	s.active = true
	s.lastFix = nil

	s.emit(types.GuidanceEvent{
		Kind:        types.EventSessionStarted,
		Instruction: steps[0].Instruction,
		StepIndex:   0,
	})
	return nil
}

// OnFix processes one position fix. Fixes arriving while the session is
// inactive are ignored; asynchronous delivery means stragglers after
// Stop are expected, not an error.
func (s *Session) OnFix(fix types.PositionFix) {
	if !s.active {
		return
	}
	if s.currentStep >= len(s.steps) {
		return
	}

	s.lastFix = &fix

	target := s.steps[s.currentStep].EndLocation
	distance := geo.Distance(fix.Latitude, fix.Longitude, target.Latitude, target.Longitude)

	if distance > s.thresholdM {
		s.emit(types.GuidanceEvent{
			Kind:              types.EventProgressUpdate,
			DistanceRemaining: distance,
			StepIndex:         s.currentStep,
		})
		return
	}

	s.currentStep++
	if s.currentStep == len(s.steps) {
		s.active = false
		s.emit(types.GuidanceEvent{
			Kind:      types.EventArrivedAtDestination,
			StepIndex: s.currentStep,
		})
		return
	}

	s.emit(types.GuidanceEvent{
		Kind:        types.EventArrivedAtStep,
		Instruction: s.steps[s.currentStep].Instruction,
		StepIndex:   s.currentStep,
	})
}

// Stop ends the session and clears its state. Stopping an already
// inactive session is a no-op and emits nothing.
func (s *Session) Stop() {
	if !s.active {
		return
	}
	s.reset()
	s.emit(types.GuidanceEvent{Kind: types.EventSessionStopped})
}

// Reset clears a session (e.g. after arrival) without emitting an event
func (s *Session) Reset() {
	s.reset()
}

func (s *Session) reset() {
	s.active = false
	s.steps = nil
	s.currentStep = 0
	s.lastFix = nil
}

// Active reports whether the session is consuming fixes
func (s *Session) Active() bool {
	return s.active
}

// CurrentStep returns the index of the step being navigated. It equals
// StepsTotal once the destination has been reached.
func (s *Session) CurrentStep() int {
	return s.currentStep
}

// StepsTotal returns the number of steps in the active route
func (s *Session) StepsTotal() int {
	return len(s.steps)
}

// LastFix returns a copy of the most recent fix, or nil if none has
// been processed since Start
func (s *Session) LastFix() *types.PositionFix {
	if s.lastFix == nil {
		return nil
	}
	fix := *s.lastFix
	return &fix
}

func (s *Session) emit(event types.GuidanceEvent) {
	if s.sink == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	s.sink.Emit(event)
}
