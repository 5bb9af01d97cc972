package sync

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicate(t *testing.T) {
	contact := uuid.New()
	other := uuid.New()
	ts := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	existing := []models.Interaction{
		{ID: uuid.New(), ContactID: contact, Kind: models.InteractionLinkedIn, Timestamp: ts},
	}

	tests := []struct {
		name      string
		candidate models.DetectedInteraction
		want      bool
	}{
		{
			name:      "59 minutes later",
			candidate: models.DetectedInteraction{ContactID: contact, Kind: models.InteractionLinkedIn, Timestamp: ts.Add(59 * time.Minute)},
			want:      true,
		},
		{
			name:      "59 minutes earlier",
			candidate: models.DetectedInteraction{ContactID: contact, Kind: models.InteractionLinkedIn, Timestamp: ts.Add(-59 * time.Minute)},
			want:      true,
		},
		{
			name:      "exactly one hour",
			candidate: models.DetectedInteraction{ContactID: contact, Kind: models.InteractionLinkedIn, Timestamp: ts.Add(time.Hour)},
			want:      false,
		},
		{
			name:      "61 minutes later",
			candidate: models.DetectedInteraction{ContactID: contact, Kind: models.InteractionLinkedIn, Timestamp: ts.Add(61 * time.Minute)},
			want:      false,
		},
		{
			name:      "different kind",
			candidate: models.DetectedInteraction{ContactID: contact, Kind: models.InteractionCall, Timestamp: ts},
			want:      false,
		},
		{
			name:      "different contact",
			candidate: models.DetectedInteraction{ContactID: other, Kind: models.InteractionLinkedIn, Timestamp: ts},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicate(tt.candidate, existing))
		})
	}
}

func TestFilterDuplicates(t *testing.T) {
	contact := uuid.New()
	ts := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)
	existing := []models.Interaction{
		{ID: uuid.New(), ContactID: contact, Kind: models.InteractionCall, Timestamp: ts},
	}

	dup := models.DetectedInteraction{ContactID: contact, Kind: models.InteractionCall, Timestamp: ts.Add(10 * time.Minute)}
	fresh := models.DetectedInteraction{ContactID: contact, Kind: models.InteractionCall, Timestamp: ts.Add(3 * time.Hour)}
	// Two candidates that duplicate each other but nothing stored both survive.
	twin := fresh

	kept, dropped := FilterDuplicates([]models.DetectedInteraction{dup, fresh, twin}, existing)
	assert.Equal(t, []models.DetectedInteraction{fresh, twin}, kept)
	assert.Equal(t, []models.DetectedInteraction{dup}, dropped)
}

func TestFilterDuplicatesEmpty(t *testing.T) {
	kept, dropped := FilterDuplicates(nil, nil)
	assert.Empty(t, kept)
	assert.Empty(t, dropped)
}
