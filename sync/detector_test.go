package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays fixed draws.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) Intn(n int) int {
	i := r.ints[0]
	r.ints = r.ints[1:]
	return i % n
}

var detectNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestSimulatedDetectorDraws(t *testing.T) {
	contacts := []models.Contact{
		{ID: uuid.New(), Name: "Below"},
		{ID: uuid.New(), Name: "Boundary"},
		{ID: uuid.New(), Name: "Hit"},
		{ID: uuid.New(), Name: "Second Template"},
	}
	d := &SimulatedDetector{
		Rand: &scriptedRand{floats: []float64{0.1, 0.7, 0.71, 0.99}, ints: []int{0, 1}},
		Now:  func() time.Time { return detectNow },
	}

	got, err := d.Detect(context.Background(), contacts)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, contacts[2].ID, got[0].ContactID)
	assert.Equal(t, "Hit", got[0].ContactName)
	assert.Equal(t, models.InteractionLinkedIn, got[0].Kind)
	assert.Equal(t, detectNow.Add(-48*time.Hour), got[0].Timestamp)
	assert.NotEmpty(t, got[0].Notes)

	assert.Equal(t, contacts[3].ID, got[1].ContactID)
	assert.Equal(t, detectNow.Add(-5*24*time.Hour), got[1].Timestamp)
}

func TestSimulatedDetectorNoContacts(t *testing.T) {
	d := &SimulatedDetector{Rand: &scriptedRand{}}
	got, err := d.Detect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSimulatedDetectorHonoursCancel(t *testing.T) {
	d := &SimulatedDetector{Rand: &scriptedRand{}, Delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Detect(ctx, []models.Contact{{ID: uuid.New(), Name: "Jane"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectorFunc(t *testing.T) {
	called := false
	var d Detector = DetectorFunc(func(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
		called = true
		return nil, nil
	})
	_, err := d.Detect(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, called)
}
