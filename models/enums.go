// ABOUTME: Closed-set enums for contacts, interactions, suggestions and sync
// ABOUTME: Frequency is a tagged value with an explicit unset variant
package models

import (
	"fmt"
	"strings"
)

// Frequency is the engagement cadence configured on a contact.
type Frequency uint8

const (
	FrequencyUnset Frequency = iota
	FrequencyWeekly
	FrequencyBiweekly
	FrequencyMonthly
	FrequencyQuarterly
	FrequencyBiannually
	FrequencyAnnually
)

var frequencyNames = [...]string{"none", "weekly", "biweekly", "monthly", "quarterly", "biannually", "annually"}

var frequencyDays = [...]int{0, 7, 14, 30, 90, 180, 365}

// Frequencies lists every settable cadence, shortest first.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyBiannually, FrequencyAnnually,
	}
}

func (f Frequency) String() string {
	if int(f) < len(frequencyNames) {
		return frequencyNames[f]
	}
	return fmt.Sprintf("frequency(%d)", uint8(f))
}

// IsSet reports whether a cadence is configured.
func (f Frequency) IsSet() bool {
	return f != FrequencyUnset && f.Valid()
}

func (f Frequency) Valid() bool {
	return int(f) < len(frequencyNames)
}

// Days returns the target interval in days. ok is false for the unset variant.
func (f Frequency) Days() (days int, ok bool) {
	if !f.IsSet() {
		return 0, false
	}
	return frequencyDays[f], true
}

// ParseFrequency accepts a cadence name. Empty and "none" yield FrequencyUnset.
func ParseFrequency(s string) (Frequency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FrequencyUnset, nil
	}
	for i, name := range frequencyNames {
		if name == s {
			return Frequency(i), nil
		}
	}
	return FrequencyUnset, fmt.Errorf("unknown engagement frequency %q", s)
}

func (f Frequency) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("invalid engagement frequency %d", uint8(f))
	}
	return []byte(f.String()), nil
}

func (f *Frequency) UnmarshalText(text []byte) error {
	parsed, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// InteractionKind is how the user and a contact interacted.
type InteractionKind string

// InteractionKind constants.
const (
	InteractionCall     InteractionKind = "call"
	InteractionCoffee   InteractionKind = "coffee" // in-person meeting
	InteractionMessage  InteractionKind = "message"
	InteractionEmail    InteractionKind = "email"
	InteractionLinkedIn InteractionKind = "linkedin"
)

func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionCall, InteractionCoffee, InteractionMessage, InteractionEmail, InteractionLinkedIn:
		return true
	}
	return false
}

func ParseInteractionKind(s string) (InteractionKind, error) {
	k := InteractionKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown interaction kind %q", s)
	}
	return k, nil
}

// RelationshipType is the category a contact belongs to.
type RelationshipType string

// RelationshipType constants.
const (
	RelationshipPeer   RelationshipType = "peer"
	RelationshipMentor RelationshipType = "mentor"
	RelationshipClient RelationshipType = "client"
)

func (r RelationshipType) Valid() bool {
	switch r {
	case RelationshipPeer, RelationshipMentor, RelationshipClient:
		return true
	}
	return false
}

func ParseRelationshipType(s string) (RelationshipType, error) {
	r := RelationshipType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown relationship type %q", s)
	}
	return r, nil
}

// SyncStatus is the per-contact state of the detection cycle.
type SyncStatus string

// Sync status constants.
const (
	SyncStatusIdle    SyncStatus = "idle"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusEnabled SyncStatus = "enabled"
	SyncStatusError   SyncStatus = "error"
)

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusIdle, SyncStatusSyncing, SyncStatusEnabled, SyncStatusError:
		return true
	}
	return false
}

// Provenance records where an interaction came from.
type Provenance string

const (
	ProvenanceManual       Provenance = "manual"
	ProvenanceAutoDetected Provenance = "auto-detected"
)

// SuggestionStatus constants.
type SuggestionStatus string

const (
	SuggestionPending   SuggestionStatus = "pending"
	SuggestionAccepted  SuggestionStatus = "accepted"
	SuggestionDismissed SuggestionStatus = "dismissed"
)

// DueStatus classifies a contact against its cadence.
type DueStatus string

const (
	DueOverdue     DueStatus = "overdue"
	DueSoon        DueStatus = "due-soon"
	DueOnTrack     DueStatus = "on-track"
	DueNoFrequency DueStatus = "no-frequency"
)

// Priority orders statuses for urgency sorting; lower is more urgent.
func (d DueStatus) Priority() int {
	switch d {
	case DueOverdue:
		return 0
	case DueSoon:
		return 1
	case DueOnTrack:
		return 2
	}
	return 3
}

// Label is the human-readable badge text.
func (d DueStatus) Label() string {
	switch d {
	case DueOverdue:
		return "Overdue"
	case DueSoon:
		return "Due Soon"
	case DueOnTrack:
		return "On Track"
	}
	return "No Frequency"
}
