// ABOUTME: Background scheduler driving orchestrator cycles on a fixed interval
// ABOUTME: Start/Stop lifecycle with an injectable ticker for deterministic tests
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"
)

const (
	DefaultInterval = 15 * time.Minute
	MinInterval     = 5 * time.Minute
)

// Ticker is the subset of time.Ticker the scheduler uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

var ErrSchedulerRunning = errors.New("scheduler already running")

// Scheduler runs a cycle at start when eligible contacts exist and then one
// per tick until stopped.
type Scheduler struct {
	orch     *Orchestrator
	interval time.Duration

	// NewTicker builds the interval ticker; tests replace it.
	NewTicker func(time.Duration) Ticker
	// OnCycle, if set, observes every cycle the scheduler runs.
	OnCycle func(CycleResult)

	mu     gosync.Mutex
	cancel context.CancelFunc
	wg     gosync.WaitGroup
}

func NewScheduler(orch *Orchestrator, interval time.Duration) (*Scheduler, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		orch:      orch,
		interval:  interval,
		NewTicker: newRealTicker,
	}, nil
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start launches the background loop and returns immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrSchedulerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	ticker := s.NewTicker(s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		s.loop(ctx, ticker)
	}()
	return nil
}

func (s *Scheduler) loop(ctx context.Context, ticker Ticker) {
	if ok, err := s.orch.HasEligibleContacts(ctx); err != nil {
		s.orch.Logger.Error("failed to check for sync-eligible contacts", "err", err)
	} else if ok {
		s.run(ctx, TriggerStartup)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.run(ctx, TriggerInterval)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, trigger Trigger) CycleResult {
	res := s.orch.RunCycle(ctx, trigger)
	if s.OnCycle != nil {
		s.OnCycle(res)
	}
	return res
}

// TriggerNow runs a manual cycle on the caller's goroutine. It is safe to
// call while the loop is running; overlapping cycles are skipped.
func (s *Scheduler) TriggerNow(ctx context.Context) CycleResult {
	return s.run(ctx, TriggerManual)
}

// Stop cancels the loop and waits for an in-progress cycle to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}
