package service

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type runReaper interface {
	Reap(retention time.Duration) int
}

// Reaper periodically drops finished tracking runs from the registry.
type Reaper struct {
	tracker   runReaper
	retention time.Duration
	cron      *cron.Cron
}

func NewReaper(tr runReaper, schedule string, retention time.Duration) (*Reaper, error) {
	r := &Reaper{
		tracker:   tr,
		retention: retention,
		cron:      cron.New(),
	}
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("schedule reaper %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Reaper) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running reap to finish.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reaper) run() {
	if n := r.tracker.Reap(r.retention); n > 0 {
		log.Printf("reaped %d finished tracking runs", n)
	}
}
