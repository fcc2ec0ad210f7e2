package domain

import "time"

// SimulationRun is the mutable state of one simulated trip. It is owned by
// a single scheduler and advanced only through the simulator's Tick.
type SimulationRun struct {
	Origin          GeoPoint
	Destination     GeoPoint
	TotalSteps      int
	CurrentStep     int
	TotalDistanceKm float64
}

// Completed reports whether no further ticks are allowed.
func (r *SimulationRun) Completed() bool {
	return r.CurrentStep >= r.TotalSteps
}

// Fraction is the share of the route already travelled, in [0, 1].
func (r *SimulationRun) Fraction() float64 {
	if r.TotalSteps == 0 {
		return 1
	}
	return float64(r.CurrentStep) / float64(r.TotalSteps)
}

type TickResult struct {
	Step                int      `json:"step"`
	TotalSteps          int      `json:"total_steps"`
	Position            GeoPoint `json:"position"`
	RemainingDistanceKm float64  `json:"remaining_distance_km"`
	ETAMinutes          int      `json:"eta_minutes"`
	ETA                 string   `json:"eta"`
	Arrived             bool     `json:"arrived"`
}

type TrackingState string

const (
	TrackingActive    TrackingState = "active"
	TrackingArrived   TrackingState = "arrived"
	TrackingCancelled TrackingState = "cancelled"
)

// TrackingUpdate is a tick result tagged with the dispatch it belongs to.
type TrackingUpdate struct {
	DispatchID string     `json:"dispatch_id"`
	TickResult TickResult `json:"tick"`
	Timestamp  time.Time  `json:"timestamp"`
}

type TrackingSnapshot struct {
	DispatchID      string        `json:"dispatch_id"`
	State           TrackingState `json:"state"`
	Origin          GeoPoint      `json:"origin"`
	Destination     GeoPoint      `json:"destination"`
	TotalDistanceKm float64       `json:"total_distance_km"`
	Last            TickResult    `json:"last"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at,omitempty"`
}
