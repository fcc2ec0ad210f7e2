// Package simulator advances a simulated ambulance along a straight line
// between two points, one fixed step per tick.
//
// The run state lives in a domain.SimulationRun owned by the caller; Tick is
// pure arithmetic and never blocks. Scheduling, cancellation and delivery of
// results belong to the caller.
package simulator

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
)

const (
	DefaultTotalSteps   = 100
	DefaultTickInterval = time.Second
	DefaultETAFactor    = 2.0
)

// Policy holds the placeholder constants of the simulation. None of them is
// derived from real speed data.
type Policy struct {
	TotalSteps   int
	TickInterval time.Duration
	// ETAFactor converts remaining kilometres into minutes.
	ETAFactor float64
}

func DefaultPolicy() Policy {
	return Policy{
		TotalSteps:   DefaultTotalSteps,
		TickInterval: DefaultTickInterval,
		ETAFactor:    DefaultETAFactor,
	}
}

func (p Policy) Validate() error {
	if p.TotalSteps <= 0 {
		return domain.ErrInvalidSteps
	}
	if p.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", p.TickInterval)
	}
	if p.ETAFactor < 0 {
		return fmt.Errorf("eta factor must not be negative, got %f", p.ETAFactor)
	}
	return nil
}

type Simulator struct {
	policy Policy
}

func New(policy Policy) (*Simulator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{policy: policy}, nil
}

func (s *Simulator) Policy() Policy {
	return s.policy
}

// Start creates a run with the policy's step count.
func (s *Simulator) Start(origin, destination domain.GeoPoint) (*domain.SimulationRun, error) {
	return Start(origin, destination, s.policy.TotalSteps)
}

func (s *Simulator) Tick(run *domain.SimulationRun) (domain.TickResult, error) {
	return Tick(run, s.policy.ETAFactor)
}

func (s *Simulator) Current(run *domain.SimulationRun) domain.TickResult {
	return Current(run, s.policy.ETAFactor)
}

// Start validates the endpoints and returns a run at step 0. When origin and
// destination are the same point the run is returned already completed with
// zero steps.
func Start(origin, destination domain.GeoPoint, totalSteps int) (*domain.SimulationRun, error) {
	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	if totalSteps <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidSteps, totalSteps)
	}

	if origin == destination {
		return &domain.SimulationRun{Origin: origin, Destination: destination}, nil
	}

	return &domain.SimulationRun{
		Origin:          origin,
		Destination:     destination,
		TotalSteps:      totalSteps,
		TotalDistanceKm: DistanceKm(origin, destination),
	}, nil
}

// Tick advances run by one step. It fails with domain.ErrAlreadyCompleted,
// leaving run untouched, once the destination has been reached.
func Tick(run *domain.SimulationRun, etaFactor float64) (domain.TickResult, error) {
	if run.Completed() {
		return domain.TickResult{}, domain.ErrAlreadyCompleted
	}
	run.CurrentStep++
	return Current(run, etaFactor), nil
}

// Current reports the run's position at its current step without advancing.
func Current(run *domain.SimulationRun, etaFactor float64) domain.TickResult {
	var (
		pos       domain.GeoPoint
		remaining float64
	)
	if run.Completed() {
		// exact endpoint, no float drift
		pos = run.Destination
	} else {
		f := run.Fraction()
		pos = Interpolate(run.Origin, run.Destination, f)
		remaining = run.TotalDistanceKm * (1 - f)
	}

	eta := ETAMinutes(remaining, etaFactor)
	return domain.TickResult{
		Step:                run.CurrentStep,
		TotalSteps:          run.TotalSteps,
		Position:            pos,
		RemainingDistanceKm: remaining,
		ETAMinutes:          eta,
		ETA:                 FormatETA(eta),
		Arrived:             run.Completed(),
	}
}

// Interpolate returns the point at fraction f of the straight segment a-b in
// coordinate space. Good enough for short urban trips; it does not follow
// roads or the great circle.
func Interpolate(a, b domain.GeoPoint, f float64) domain.GeoPoint {
	return domain.GeoPoint{
		Lat: a.Lat + (b.Lat-a.Lat)*f,
		Lon: a.Lon + (b.Lon-a.Lon)*f,
	}
}

// DistanceKm is the haversine distance between a and b.
func DistanceKm(a, b domain.GeoPoint) float64 {
	return geo.DistanceHaversine(ToOrb(a), ToOrb(b)) / 1000
}

func ToOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func ETAMinutes(remainingKm, factor float64) int {
	return int(math.Round(remainingKm * factor))
}

func FormatETA(minutes int) string {
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
