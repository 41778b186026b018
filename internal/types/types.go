package types

import (
	"time"
)

// LatLng is a geographic coordinate in decimal degrees
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PositionFix represents a single reported position from a GPS source
type PositionFix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   float64   `json:"heading"`
	Speed     float64   `json:"speed"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Step is the smallest routable unit, carrying one maneuver instruction
type Step struct {
	EndLocation LatLng  `json:"end_location"`
	Instruction string  `json:"instruction"`
	Maneuver    string  `json:"maneuver,omitempty"`
	DistanceM   float64 `json:"distance_m"`
}

// Leg is an ordered sequence of steps between two waypoints
type Leg struct {
	Steps     []Step  `json:"steps"`
	DistanceM float64 `json:"distance_m"`
	DurationS float64 `json:"duration_s"`
}

// Route is an ordered sequence of legs returned by a directions provider.
// It is immutable once fetched; a new fetch replaces it wholesale.
type Route struct {
	Legs      []Leg   `json:"legs"`
	DistanceM float64 `json:"distance_m"`
	DurationS float64 `json:"duration_s"`
	Mode      string  `json:"mode"`
}

// Steps flattens all legs into one ordered step sequence
func (r *Route) Steps() []Step {
	var steps []Step
	for _, leg := range r.Legs {
		steps = append(steps, leg.Steps...)
	}
	return steps
}

// Trip represents one navigation trip session
type Trip struct {
	TripID         string    `json:"trip_id"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	OriginLat      float64   `json:"origin_lat"`
	OriginLng      float64   `json:"origin_lng"`
	DestinationLat float64   `json:"destination_lat"`
	DestinationLng float64   `json:"destination_lng"`
	Mode           string    `json:"mode"`
	Status         string    `json:"status"`
	StepsTotal     int       `json:"steps_total"`
	StepsCompleted int       `json:"steps_completed"`
}

// Trip status values
const (
	TripStatusActive  = "active"
	TripStatusArrived = "arrived"
	TripStatusStopped = "stopped"
)

// SavedPlace represents a user-saved location
type SavedPlace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// EventKind identifies a guidance event emitted by a navigation session
type EventKind string

const (
	EventSessionStarted       EventKind = "session_started"
	EventProgressUpdate       EventKind = "progress_update"
	EventArrivedAtStep        EventKind = "arrived_at_step"
	EventArrivedAtDestination EventKind = "arrived_at_destination"
	EventSessionStopped       EventKind = "session_stopped"
)

// Trip command actions
const (
	TripActionStart = "start"
	TripActionStop  = "stop"
)

// TripCommand asks the navigation daemon to start or stop a trip. The
// sender chooses the trip ID so it can reference the trip immediately.
type TripCommand struct {
	Action      string    `json:"action"`
	TripID      string    `json:"trip_id"`
	Route       *Route    `json:"route,omitempty"`
	Origin      LatLng    `json:"origin"`
	Destination LatLng    `json:"destination"`
	Mode        string    `json:"mode,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// GuidanceEvent is a single guidance notification for voice/UI consumers
type GuidanceEvent struct {
	Kind              EventKind `json:"kind"`
	TripID            string    `json:"trip_id,omitempty"`
	Instruction       string    `json:"instruction,omitempty"`
	DistanceRemaining float64   `json:"distance_remaining_m,omitempty"`
	StepIndex         int       `json:"step_index"`
	Timestamp         time.Time `json:"timestamp"`
}
