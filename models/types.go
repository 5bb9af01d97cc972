// ABOUTME: Data models for relationship-management entities
// ABOUTME: Defines Contact, Interaction, Suggestion and their closed-set enums
package models

import (
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Company         string           `json:"company,omitempty"`
	Role            string           `json:"role,omitempty"`
	Email           string           `json:"email,omitempty"`
	ProfileURL      string           `json:"profile_url,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Relationship    RelationshipType `json:"relationship"`
	Frequency       Frequency        `json:"frequency"`
	AutoSync        bool             `json:"auto_sync"`
	SyncStatus      SyncStatus       `json:"sync_status"`
	LastContactedAt *time.Time       `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// SyncEligible reports whether the contact takes part in external detection.
// Auto-sync without a profile URL has nothing to look up.
func (c *Contact) SyncEligible() bool {
	return c.AutoSync && c.ProfileURL != ""
}

type Interaction struct {
	ID         uuid.UUID       `json:"id"`
	ContactID  uuid.UUID       `json:"contact_id"`
	Kind       InteractionKind `json:"kind"`
	Timestamp  time.Time       `json:"timestamp"`
	Notes      string          `json:"notes,omitempty"`
	Provenance Provenance      `json:"provenance,omitempty"`
	AutoLogged bool            `json:"auto_logged,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Suggestion is a detected interaction waiting for review. Only pending
// suggestions are stored; accepting or dismissing removes the record.
type Suggestion struct {
	ID          string           `json:"id"`
	ContactID   uuid.UUID        `json:"contact_id"`
	ContactName string           `json:"contact_name"`
	Kind        InteractionKind  `json:"kind"`
	Timestamp   time.Time        `json:"timestamp"`
	Notes       string           `json:"notes,omitempty"`
	DetectedAt  time.Time        `json:"detected_at"`
	Status      SuggestionStatus `json:"status"`
}

// DetectedInteraction is a candidate produced by a detector.
type DetectedInteraction struct {
	ContactID   uuid.UUID       `json:"contact_id"`
	ContactName string          `json:"contact_name"`
	Kind        InteractionKind `json:"kind"`
	Timestamp   time.Time       `json:"timestamp"`
	Notes       string          `json:"notes,omitempty"`
}

// ContactStatus pairs a contact with its computed due status for list views.
type ContactStatus struct {
	Contact         Contact      `json:"contact"`
	DueStatus       DueStatus    `json:"due_status"`
	DaysSince       *int         `json:"days_since,omitempty"`
	LastInteraction *Interaction `json:"last_interaction,omitempty"`
}
