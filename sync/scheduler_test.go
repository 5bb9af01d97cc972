package sync

import (
	"context"
	"testing"
	"time"

	"github.com/harperreed/rolodex/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { close(f.stopped) }

func newTestScheduler(t *testing.T, orch *Orchestrator) (*Scheduler, *fakeTicker, chan CycleResult) {
	t.Helper()
	s, err := NewScheduler(orch, time.Minute)
	require.NoError(t, err)

	ticker := newFakeTicker()
	s.NewTicker = func(d time.Duration) Ticker {
		assert.Equal(t, time.Minute, d)
		return ticker
	}
	cycles := make(chan CycleResult, 8)
	s.OnCycle = func(r CycleResult) { cycles <- r }
	return s, ticker, cycles
}

func waitCycle(t *testing.T, cycles <-chan CycleResult) CycleResult {
	t.Helper()
	select {
	case r := <-cycles:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a cycle")
	}
	return CycleResult{}
}

func TestNewSchedulerDefaults(t *testing.T) {
	_, err := NewScheduler(nil, time.Minute)
	assert.Error(t, err)

	s, err := NewScheduler(NewOrchestrator(setupService(t), fixedDetector(), quietLogger()), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, s.Interval())
}

func TestSchedulerStartupAndTicks(t *testing.T) {
	svc := setupService(t)
	jane := addSyncContact(t, svc, "jane")

	calls := 0
	det := DetectorFunc(func(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
		calls++
		return []models.DetectedInteraction{candidateFor(jane, time.Duration(calls)*24*time.Hour)}, nil
	})
	s, ticker, cycles := newTestScheduler(t, NewOrchestrator(svc, det, quietLogger()))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerRunning)

	first := waitCycle(t, cycles)
	assert.Equal(t, TriggerStartup, first.Trigger)
	assert.Equal(t, 1, first.Added)

	ticker.ch <- detectNow
	second := waitCycle(t, cycles)
	assert.Equal(t, TriggerInterval, second.Trigger)
	assert.Equal(t, 1, second.Added)

	s.Stop()
	select {
	case <-ticker.stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker was not stopped")
	}

	pending, err := svc.PendingSuggestions(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// Stop is idempotent and the scheduler can be restarted.
	s.Stop()
	s.NewTicker = func(time.Duration) Ticker { return newFakeTicker() }
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestSchedulerSkipsStartupWithoutEligibleContacts(t *testing.T) {
	svc := setupService(t)
	s, ticker, cycles := newTestScheduler(t, NewOrchestrator(svc, fixedDetector(), quietLogger()))

	require.NoError(t, s.Start(context.Background()))
	ticker.ch <- detectNow

	r := waitCycle(t, cycles)
	assert.Equal(t, TriggerInterval, r.Trigger, "no startup cycle without eligible contacts")
	assert.Equal(t, SkipNoEligible, r.SkipReason)
	s.Stop()
}

func TestSchedulerTriggerNow(t *testing.T) {
	svc := setupService(t)
	jane := addSyncContact(t, svc, "jane")
	s, _, _ := newTestScheduler(t, NewOrchestrator(svc, fixedDetector(candidateFor(jane, time.Hour)), quietLogger()))

	r := s.TriggerNow(context.Background())
	assert.Equal(t, TriggerManual, r.Trigger)
	assert.Equal(t, 1, r.Added)
}

func TestSchedulerRunStopsWithContext(t *testing.T) {
	svc := setupService(t)
	s, ticker, _ := newTestScheduler(t, NewOrchestrator(svc, fixedDetector(), quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	<-ticker.stopped
}
