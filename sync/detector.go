// ABOUTME: Detection adapter contract and the simulated stand-in detector
// ABOUTME: Detectors take the sync-eligible batch and return candidate interactions
package sync

import (
	"context"
	"math/rand"
	"time"

	"github.com/harperreed/rolodex/models"
)

// Detector produces candidate interactions for a batch of sync-eligible
// contacts. Implementations make at most one outbound lookup per call.
type Detector interface {
	Detect(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error)

func (f DetectorFunc) Detect(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
	return f(ctx, contacts)
}

// Rand is the randomness the simulated detector draws from. *rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type simulatedTemplate struct {
	kind  models.InteractionKind
	ago   time.Duration
	notes string
}

var simulatedTemplates = []simulatedTemplate{
	{models.InteractionLinkedIn, 2 * 24 * time.Hour, "Exchanged messages about upcoming project collaboration"},
	{models.InteractionLinkedIn, 5 * 24 * time.Hour, "Discussed industry trends and shared article"},
}

// simulatedHitRate: a draw above this fabricates a candidate.
const simulatedHitRate = 0.7

// SimulatedDetector fabricates plausible candidates so the review flow can be
// exercised without an external integration.
type SimulatedDetector struct {
	Rand  Rand
	Now   func() time.Time
	Delay time.Duration
}

// NewSimulatedDetector seeds its own generator and simulates one second of
// network latency.
func NewSimulatedDetector() *SimulatedDetector {
	return &SimulatedDetector{
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:   time.Now,
		Delay: time.Second,
	}
}

func (d *SimulatedDetector) Detect(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	var out []models.DetectedInteraction
	for _, c := range contacts {
		if d.Rand.Float64() <= simulatedHitRate {
			continue
		}
		tpl := simulatedTemplates[d.Rand.Intn(len(simulatedTemplates))]
		out = append(out, models.DetectedInteraction{
			ContactID:   c.ID,
			ContactName: c.Name,
			Kind:        tpl.kind,
			Timestamp:   now().Add(-tpl.ago),
			Notes:       tpl.notes,
		})
	}
	return out, nil
}
