package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/publisher"
	"github.com/Bytix-in/Prana-AI/module/dispatch/simulator"
)

const subscriberBuffer = 16

// ArrivalFunc is invoked once per run, from the run's goroutine, with the
// tick that reached the destination.
type ArrivalFunc func(ctx context.Context, u *domain.TrackingUpdate)

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	*time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{time.NewTicker(d)}
}

type trackedRun struct {
	run      *domain.SimulationRun
	snapshot domain.TrackingSnapshot
	cancel   context.CancelFunc
	done     chan struct{}
	subs     map[int]chan domain.TrackingUpdate
	nextSub  int
}

// Tracker drives one simulation run per dispatch. Each run is advanced by
// its own goroutine on a fixed interval; every tick is published and fanned
// out to subscribers.
type Tracker struct {
	sim       *simulator.Simulator
	publisher publisher.TrackingPublisher
	newTicker func(time.Duration) ticker
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	runs      map[string]*trackedRun
	onArrival ArrivalFunc
}

func NewTracker(sim *simulator.Simulator, pub publisher.TrackingPublisher) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		sim:       sim,
		publisher: pub,
		newTicker: newTimeTicker,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		runs:      make(map[string]*trackedRun),
	}
}

func (t *Tracker) OnArrival(fn ArrivalFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onArrival = fn
}

// Track starts simulating the trip of dispatch id. A degenerate route
// (origin == destination) arrives immediately without scheduling any tick.
func (t *Tracker) Track(id string, origin, destination domain.GeoPoint) (domain.TrackingSnapshot, error) {
	run, err := t.sim.Start(origin, destination)
	if err != nil {
		return domain.TrackingSnapshot{}, err
	}

	t.mu.Lock()
	if existing, ok := t.runs[id]; ok && existing.snapshot.State == domain.TrackingActive {
		t.mu.Unlock()
		return domain.TrackingSnapshot{}, fmt.Errorf("%w: %s", domain.ErrRunExists, id)
	}

	now := t.now()
	tr := &trackedRun{
		run: run,
		snapshot: domain.TrackingSnapshot{
			DispatchID:      id,
			State:           domain.TrackingActive,
			Origin:          origin,
			Destination:     destination,
			TotalDistanceKm: run.TotalDistanceKm,
			Last:            t.sim.Current(run),
			StartedAt:       now,
		},
		done: make(chan struct{}),
		subs: make(map[int]chan domain.TrackingUpdate),
	}
	t.runs[id] = tr

	if run.Completed() {
		tr.snapshot.State = domain.TrackingArrived
		tr.snapshot.FinishedAt = now
		close(tr.done)
		snap := tr.snapshot
		t.mu.Unlock()

		log.Printf("[%s] degenerate route, arrived immediately", id)
		t.deliver(t.ctx, &domain.TrackingUpdate{DispatchID: id, TickResult: snap.Last, Timestamp: now})
		return snap, nil
	}

	ctx, cancel := context.WithCancel(t.ctx)
	tr.cancel = cancel
	snap := tr.snapshot
	t.wg.Add(1)
	t.mu.Unlock()

	log.Printf("[%s] tracking started: %.2f km in %d steps", id, run.TotalDistanceKm, run.TotalSteps)
	go t.loop(ctx, id, tr)
	return snap, nil
}

func (t *Tracker) loop(ctx context.Context, id string, tr *trackedRun) {
	defer t.wg.Done()
	defer close(tr.done)
	defer tr.cancel()

	tk := t.newTicker(t.sim.Policy().TickInterval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C():
			u, ok := t.step(id, tr)
			if !ok {
				return
			}
			t.deliver(ctx, u)
			if u.TickResult.Arrived {
				log.Printf("[%s] ambulance arrived", id)
				return
			}
		}
	}
}

// step advances the run under the lock. It reports false when the run is no
// longer active, e.g. cancelled between the timer firing and the lock.
func (t *Tracker) step(id string, tr *trackedRun) (*domain.TrackingUpdate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tr.snapshot.State != domain.TrackingActive {
		return nil, false
	}

	res, err := t.sim.Tick(tr.run)
	if err != nil {
		// the loop stops at arrival, so this is a broken invariant
		panic(fmt.Sprintf("tracker: tick %s: %v", id, err))
	}

	now := t.now()
	tr.snapshot.Last = res
	u := &domain.TrackingUpdate{DispatchID: id, TickResult: res, Timestamp: now}

	terminal := res.Arrived
	if terminal {
		tr.snapshot.State = domain.TrackingArrived
		tr.snapshot.FinishedAt = now
	}
	for _, ch := range tr.subs {
		offer(ch, *u, terminal)
	}
	if terminal {
		closeSubs(tr)
	}
	return u, true
}

func (t *Tracker) deliver(ctx context.Context, u *domain.TrackingUpdate) {
	if t.publisher != nil {
		if err := t.publisher.PublishUpdate(ctx, u); err != nil {
			log.Printf("[%s] publish tracking update error: %v", u.DispatchID, err)
		}
	}

	if !u.TickResult.Arrived {
		return
	}
	t.mu.Lock()
	fn := t.onArrival
	t.mu.Unlock()
	if fn != nil {
		fn(ctx, u)
	}
}

// Snapshot returns the latest known state of the run for dispatch id.
func (t *Tracker) Snapshot(id string) (domain.TrackingSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.runs[id]
	if !ok {
		return domain.TrackingSnapshot{}, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	return tr.snapshot, nil
}

// Cancel stops the timer of an active run. When it returns the run will not
// be mutated again. Cancelling a finished run fails with ErrAlreadyCompleted.
func (t *Tracker) Cancel(id string) error {
	t.mu.Lock()
	tr, ok := t.runs[id]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if tr.snapshot.State != domain.TrackingActive {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", domain.ErrAlreadyCompleted, id, tr.snapshot.State)
	}

	tr.snapshot.State = domain.TrackingCancelled
	tr.snapshot.FinishedAt = t.now()
	closeSubs(tr)
	tr.cancel()
	t.mu.Unlock()

	<-tr.done
	log.Printf("[%s] tracking cancelled at step %d/%d", id, tr.snapshot.Last.Step, tr.snapshot.Last.TotalSteps)
	return nil
}

// Subscribe returns a channel of tracking updates for dispatch id. The
// channel is closed when the run finishes or unsubscribe is called. A
// subscriber that falls behind misses intermediate updates but always
// receives the arrival. Subscribing to a finished run yields its last tick.
func (t *Tracker) Subscribe(id string) (<-chan domain.TrackingUpdate, func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.runs[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}

	ch := make(chan domain.TrackingUpdate, subscriberBuffer)
	if tr.snapshot.State != domain.TrackingActive {
		ch <- domain.TrackingUpdate{DispatchID: id, TickResult: tr.snapshot.Last, Timestamp: tr.snapshot.FinishedAt}
		close(ch)
		return ch, func() {}, nil
	}

	key := tr.nextSub
	tr.nextSub++
	tr.subs[key] = ch

	unsubscribe := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if c, ok := tr.subs[key]; ok {
			delete(tr.subs, key)
			close(c)
		}
	}
	return ch, unsubscribe, nil
}

// Reap forgets finished runs older than retention and returns how many
// were dropped.
func (t *Tracker) Reap(retention time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-retention)
	n := 0
	for id, tr := range t.runs {
		if tr.snapshot.State == domain.TrackingActive {
			continue
		}
		if tr.snapshot.FinishedAt.Before(cutoff) {
			delete(t.runs, id)
			n++
		}
	}
	return n
}

// Active returns the number of runs still being simulated.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, tr := range t.runs {
		if tr.snapshot.State == domain.TrackingActive {
			n++
		}
	}
	return n
}

// Close stops every run and waits for their goroutines.
func (t *Tracker) Close() {
	t.cancel()
	t.wg.Wait()
}

func offer(ch chan domain.TrackingUpdate, u domain.TrackingUpdate, force bool) {
	select {
	case ch <- u:
		return
	default:
	}
	if !force {
		return
	}
	// make room for the final update
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- u:
	default:
	}
}

func closeSubs(tr *trackedRun) {
	for key, ch := range tr.subs {
		delete(tr.subs, key)
		close(ch)
	}
}
