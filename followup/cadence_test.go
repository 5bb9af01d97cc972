// ABOUTME: Tests for due-status computation
// ABOUTME: Covers cadence thresholds, fallback policies and dashboard helpers
package followup

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func contactWith(freq models.Frequency) *models.Contact {
	return &models.Contact{
		ID:        uuid.New(),
		Name:      "Jane Doe",
		Frequency: freq,
		CreatedAt: now.Add(-400 * day),
	}
}

func interactionAt(c *models.Contact, ago time.Duration) models.Interaction {
	return models.Interaction{
		ID:        uuid.New(),
		ContactID: c.ID,
		Kind:      models.InteractionCall,
		Timestamp: now.Add(-ago),
	}
}

func TestDueStatusMonthly(t *testing.T) {
	jane := contactWith(models.FrequencyMonthly)

	status := DueStatus(jane, []models.Interaction{interactionAt(jane, 25*day)}, now)
	assert.Equal(t, models.DueSoon, status, "25 days on monthly cadence")

	status = DueStatus(jane, []models.Interaction{interactionAt(jane, 30*day)}, now)
	assert.Equal(t, models.DueOverdue, status, "exactly 30 days is overdue")
}

func TestDueStatusWeekly(t *testing.T) {
	c := contactWith(models.FrequencyWeekly)

	tests := []struct {
		name string
		ago  time.Duration
		want models.DueStatus
	}{
		{"three days", 3 * day, models.DueOnTrack},
		{"just under due soon", 5*day + 14*time.Hour, models.DueOnTrack},
		{"exactly 5.6 days", 5*day + 14*time.Hour + 24*time.Minute, models.DueSoon},
		{"six days", 6 * day, models.DueSoon},
		{"just under seven days", 7*day - time.Second, models.DueSoon},
		{"exactly seven days", 7 * day, models.DueOverdue},
		{"ten days", 10 * day, models.DueOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueStatus(c, []models.Interaction{interactionAt(c, tt.ago)}, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDueStatusNoFrequency(t *testing.T) {
	c := contactWith(models.FrequencyUnset)
	assert.Equal(t, models.DueNoFrequency, DueStatus(c, nil, now))
	assert.Equal(t, models.DueNoFrequency, DueStatus(c, []models.Interaction{interactionAt(c, 1000*day)}, now))
}

func TestDueStatusNoHistory(t *testing.T) {
	c := contactWith(models.FrequencyAnnually)
	assert.Equal(t, models.DueOverdue, DueStatus(c, nil, now))
}

func TestDueStatusUsesMostRecent(t *testing.T) {
	c := contactWith(models.FrequencyWeekly)
	other := contactWith(models.FrequencyWeekly)

	interactions := []models.Interaction{
		interactionAt(c, 20*day),
		interactionAt(other, time.Hour),
		interactionAt(c, 2*day),
		interactionAt(c, 9*day),
	}

	res := Evaluator{}.Evaluate(c, interactions, now)
	assert.Equal(t, models.DueOnTrack, res.Status)
	assert.Equal(t, 2, res.DaysSince)
	assert.Equal(t, 7, res.TargetDays)
	require.NotNil(t, res.Reference)
	assert.True(t, res.Reference.Equal(now.Add(-2*day)))
}

func TestDaysSinceTruncates(t *testing.T) {
	c := contactWith(models.FrequencyMonthly)
	res := Evaluator{}.Evaluate(c, []models.Interaction{interactionAt(c, 4*day+23*time.Hour)}, now)
	assert.Equal(t, 4, res.DaysSince)
}

func TestFallbackPolicies(t *testing.T) {
	c := contactWith(models.FrequencyMonthly)
	recent := now.Add(-3 * day)
	c.LastContactedAt = &recent

	assert.Equal(t, models.DueOverdue, Evaluator{Fallback: FallbackNone}.Evaluate(c, nil, now).Status)
	assert.Equal(t, models.DueOnTrack, Evaluator{Fallback: FallbackLastContacted}.Evaluate(c, nil, now).Status)
	assert.Equal(t, models.DueOverdue, Evaluator{Fallback: FallbackCreatedAt}.Evaluate(c, nil, now).Status,
		"created 400 days ago is overdue on a monthly cadence")

	c.CreatedAt = now.Add(-26 * day)
	assert.Equal(t, models.DueSoon, Evaluator{Fallback: FallbackCreatedAt}.Evaluate(c, nil, now).Status)

	c.LastContactedAt = nil
	assert.Equal(t, models.DueOverdue, Evaluator{Fallback: FallbackLastContacted}.Evaluate(c, nil, now).Status)
}

func TestFallbackIgnoredWhenHistoryExists(t *testing.T) {
	c := contactWith(models.FrequencyWeekly)
	recent := now.Add(-time.Hour)
	c.LastContactedAt = &recent

	res := Evaluator{Fallback: FallbackLastContacted}.Evaluate(c, []models.Interaction{interactionAt(c, 8*day)}, now)
	assert.Equal(t, models.DueOverdue, res.Status)
}

func TestParseFallbackPolicy(t *testing.T) {
	p, err := ParseFallbackPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FallbackNone, p)

	p, err = ParseFallbackPolicy("created")
	require.NoError(t, err)
	assert.Equal(t, FallbackCreatedAt, p)

	_, err = ParseFallbackPolicy("yesterday")
	assert.Error(t, err)
}

func TestLastInteractionTieKeepsFirst(t *testing.T) {
	c := contactWith(models.FrequencyWeekly)
	a := interactionAt(c, day)
	b := interactionAt(c, day)
	b.Notes = "second"

	last := LastInteraction(c.ID, []models.Interaction{a, b})
	require.NotNil(t, last)
	assert.Equal(t, a.ID, last.ID)

	assert.Nil(t, LastInteraction(uuid.New(), []models.Interaction{a, b}))
}
