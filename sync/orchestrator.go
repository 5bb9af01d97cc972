// ABOUTME: Sync orchestrator running one detection cycle over sync-eligible contacts
// ABOUTME: Failures are recorded on contacts and in the cycle result, never returned
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/models"
)

// DefaultDetectionTimeout bounds a single detector call.
const DefaultDetectionTimeout = 2 * time.Minute

// Trigger says what started a cycle.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerInterval Trigger = "interval"
	TriggerManual   Trigger = "manual"
)

// Skip reasons reported in CycleResult.SkipReason.
const (
	SkipSafeMode    = "safe-mode"
	SkipInFlight    = "in-flight"
	SkipNoEligible  = "no-eligible-contacts"
	SkipLoadFailure = "load-failed"
)

// CycleResult summarizes one orchestrator cycle.
type CycleResult struct {
	Trigger    Trigger   `json:"trigger"`
	Skipped    bool      `json:"skipped"`
	SkipReason string    `json:"skip_reason,omitempty"`
	Eligible   int       `json:"eligible"`
	Detected   int       `json:"detected"`
	Duplicates int       `json:"duplicates"`
	Discarded  int       `json:"discarded"`
	Added      int       `json:"added"`
	Err        error     `json:"-"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Failed reports whether the cycle ran and hit an error.
func (r CycleResult) Failed() bool {
	return r.Err != nil
}

func (r CycleResult) String() string {
	switch {
	case r.Skipped:
		return fmt.Sprintf("sync skipped (%s)", r.SkipReason)
	case r.Err != nil:
		return fmt.Sprintf("sync failed for %d contact(s): %v", r.Eligible, r.Err)
	}
	return fmt.Sprintf("synced %d contact(s): %d detected, %d duplicate(s), %d new suggestion(s)",
		r.Eligible, r.Detected, r.Duplicates, r.Added)
}

// Notifier receives the result of cycles that added suggestions or failed.
type Notifier func(CycleResult)

// Orchestrator runs detection cycles. The zero value is not usable; build
// one with NewOrchestrator.
type Orchestrator struct {
	service  *crm.Service
	detector Detector

	// SafeMode, when it returns true, suppresses every cycle.
	SafeMode func() bool
	Notify   Notifier
	// DetectionTimeout bounds the detector call; zero means no bound.
	DetectionTimeout time.Duration
	Logger           *log.Logger

	running atomic.Bool
	last    atomic.Pointer[CycleResult]
}

func NewOrchestrator(service *crm.Service, detector Detector, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		service:          service,
		detector:         detector,
		DetectionTimeout: DefaultDetectionTimeout,
		Logger:           logger,
	}
}

// LastResult returns the most recent cycle that ran, or nil before the first.
func (o *Orchestrator) LastResult() *CycleResult {
	return o.last.Load()
}

func (o *Orchestrator) record(res CycleResult) {
	o.last.Store(&res)
}

func (o *Orchestrator) safeMode() bool {
	return o.SafeMode != nil && o.SafeMode()
}

// HasEligibleContacts reports whether any contact takes part in detection.
func (o *Orchestrator) HasEligibleContacts(ctx context.Context) (bool, error) {
	eligible, err := o.service.SyncEligibleContacts(ctx)
	if err != nil {
		return false, err
	}
	return len(eligible) > 0, nil
}

// RunCycle performs one detection cycle. It never returns an error: failures
// land in the result, on the contacts' sync status and in the log.
func (o *Orchestrator) RunCycle(ctx context.Context, trigger Trigger) CycleResult {
	res := CycleResult{Trigger: trigger, StartedAt: o.service.Now()}
	finish := func() CycleResult {
		res.FinishedAt = o.service.Now()
		return res
	}

	if o.safeMode() {
		res.Skipped, res.SkipReason = true, SkipSafeMode
		o.Logger.Debug("sync suppressed by safe mode", "trigger", trigger)
		return finish()
	}
	if !o.running.CompareAndSwap(false, true) {
		res.Skipped, res.SkipReason = true, SkipInFlight
		o.Logger.Debug("sync already in flight", "trigger", trigger)
		return finish()
	}
	defer o.running.Store(false)

	eligible, err := o.service.SyncEligibleContacts(ctx)
	if err != nil {
		res.Skipped, res.SkipReason, res.Err = true, SkipLoadFailure, err
		o.Logger.Error("failed to load contacts for sync", "err", err)
		return finish()
	}
	res.Eligible = len(eligible)
	if len(eligible) == 0 {
		res.Skipped, res.SkipReason = true, SkipNoEligible
		return finish()
	}

	ids := make([]uuid.UUID, 0, len(eligible))
	byID := make(map[uuid.UUID]models.Contact, len(eligible))
	for _, c := range eligible {
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}

	if err := o.service.SetSyncStatus(ctx, ids, models.SyncStatusSyncing); err != nil {
		return o.fail(ctx, ids, &res, finish, err)
	}

	candidates, err := o.detect(ctx, eligible)
	if err != nil {
		return o.fail(ctx, ids, &res, finish, fmt.Errorf("detection failed: %w", err))
	}
	res.Detected = len(candidates)

	var known []models.DetectedInteraction
	for _, c := range candidates {
		contact, ok := byID[c.ContactID]
		if !ok {
			res.Discarded++
			continue
		}
		if c.ContactName == "" {
			c.ContactName = contact.Name
		}
		known = append(known, c)
	}
	if res.Discarded > 0 {
		o.Logger.Warn("discarded candidates for contacts outside the sync batch", "count", res.Discarded)
	}

	existing, err := o.service.AllInteractions(ctx)
	if err != nil {
		return o.fail(ctx, ids, &res, finish, err)
	}
	kept, dropped := FilterDuplicates(known, existing)
	res.Duplicates = len(dropped)

	for _, c := range kept {
		if _, err := o.service.AddSuggestion(ctx, c); err != nil {
			// Deleted while the detector ran.
			if errors.Is(err, crm.ErrContactNotFound) {
				res.Discarded++
				o.Logger.Warn("discarded candidate for deleted contact", "contact", c.ContactID)
				continue
			}
			return o.fail(ctx, ids, &res, finish, err)
		}
		res.Added++
	}

	if err := o.service.SetSyncStatus(ctx, ids, models.SyncStatusEnabled); err != nil {
		o.Logger.Error("failed to mark contacts synced", "err", err)
		res.Err = err
	}

	out := finish()
	o.record(out)
	o.Logger.Info("sync cycle complete",
		"trigger", trigger,
		"eligible", out.Eligible,
		"detected", out.Detected,
		"duplicates", out.Duplicates,
		"added", out.Added,
	)
	if out.Added > 0 && o.Notify != nil {
		o.Notify(out)
	}
	return out
}

func (o *Orchestrator) detect(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
	if o.DetectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.DetectionTimeout)
		defer cancel()
	}
	candidates, err := o.detector.Detect(ctx, contacts)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return candidates, err
}

func (o *Orchestrator) fail(ctx context.Context, ids []uuid.UUID, res *CycleResult, finish func() CycleResult, err error) CycleResult {
	res.Err = err
	o.Logger.Error("sync cycle failed", "trigger", res.Trigger, "contacts", len(ids), "err", err)

	// The cycle context may be the reason for the failure; status updates
	// still need to land.
	statusCtx := ctx
	if ctx.Err() != nil {
		statusCtx = context.WithoutCancel(ctx)
	}
	if serr := o.service.SetSyncStatus(statusCtx, ids, models.SyncStatusError); serr != nil {
		o.Logger.Error("failed to mark contacts errored", "err", serr)
	}

	out := finish()
	o.record(out)
	if o.Notify != nil {
		o.Notify(out)
	}
	return out
}

// ContactSyncStatus is one row of the sync status report.
type ContactSyncStatus struct {
	ContactID  uuid.UUID         `json:"contact_id"`
	Name       string            `json:"name"`
	ProfileURL string            `json:"profile_url"`
	Status     models.SyncStatus `json:"status"`
}

// Status reports the sync status of every eligible contact.
func (o *Orchestrator) Status(ctx context.Context) ([]ContactSyncStatus, error) {
	eligible, err := o.service.SyncEligibleContacts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ContactSyncStatus, 0, len(eligible))
	for _, c := range eligible {
		out = append(out, ContactSyncStatus{
			ContactID:  c.ID,
			Name:       c.Name,
			ProfileURL: c.ProfileURL,
			Status:     c.SyncStatus,
		})
	}
	return out, nil
}
