// ABOUTME: Business operations for contacts, interactions and the suggestion queue
// ABOUTME: Validates input before touching the store and assigns ids and defaults
package crm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
	"github.com/oklog/ulid/v2"
)

var (
	ErrContactNotFound    = errors.New("contact not found")
	ErrInvalidContact     = errors.New("invalid contact")
	ErrInvalidInteraction = errors.New("invalid interaction")
	ErrInvalidSuggestion  = errors.New("invalid suggestion")
	ErrAmbiguousContact   = errors.New("more than one contact matches")
)

// Service is the single entry point the outer surfaces use.
type Service struct {
	store Store

	// Now is the clock; tests replace it.
	Now func() time.Time
	// Evaluator computes due statuses for dashboard views.
	Evaluator followup.Evaluator

	idMu    sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewService(store Store) *Service {
	return &Service{
		store:     store,
		Now:       time.Now,
		Evaluator: followup.Evaluator{Fallback: followup.FallbackNone},
		entropy:   ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (s *Service) newSuggestionID(t time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func normalizeContact(c *models.Contact) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidContact)
	}
	if c.Relationship == "" {
		c.Relationship = models.RelationshipPeer
	}
	if !c.Relationship.Valid() {
		return fmt.Errorf("%w: unknown relationship type %q", ErrInvalidContact, c.Relationship)
	}
	if !c.Frequency.Valid() {
		return fmt.Errorf("%w: unknown engagement frequency", ErrInvalidContact)
	}
	c.ProfileURL = strings.TrimSpace(c.ProfileURL)
	c.Email = strings.TrimSpace(c.Email)
	if c.ProfileURL == "" {
		c.AutoSync = false
		c.SyncStatus = models.SyncStatusIdle
	}
	if c.SyncStatus == "" {
		c.SyncStatus = models.SyncStatusIdle
	}
	if !c.SyncStatus.Valid() {
		return fmt.Errorf("%w: unknown sync status %q", ErrInvalidContact, c.SyncStatus)
	}
	return nil
}

// CreateContact assigns an id and timestamps and stores the contact.
func (s *Service) CreateContact(ctx context.Context, c *models.Contact) error {
	if err := normalizeContact(c); err != nil {
		return err
	}
	now := s.Now()
	c.ID = uuid.New()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.store.CreateContact(ctx, c); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetContact returns ErrContactNotFound when id is unknown.
func (s *Service) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	c, err := s.store.GetContact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if c == nil {
		return nil, ErrContactNotFound
	}
	return c, nil
}

func (s *Service) ListContacts(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.store.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// ResolveContact finds a contact by id or by case-insensitive name.
func (s *Service) ResolveContact(ctx context.Context, ref string) (*models.Contact, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return s.GetContact(ctx, id)
	}

	contacts, err := s.ListContacts(ctx)
	if err != nil {
		return nil, err
	}

	var match *models.Contact
	for i := range contacts {
		if strings.EqualFold(contacts[i].Name, ref) {
			if match != nil {
				return nil, fmt.Errorf("%w: %q", ErrAmbiguousContact, ref)
			}
			match = &contacts[i]
		}
	}
	if match == nil {
		return nil, ErrContactNotFound
	}
	return match, nil
}

// UpdateContact replaces the stored contact's editable fields. The sync
// status belongs to the orchestrator and is kept, except that removing the
// profile URL turns auto-sync off and resets it to idle.
func (s *Service) UpdateContact(ctx context.Context, c *models.Contact) error {
	existing, err := s.GetContact(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := normalizeContact(c); err != nil {
		return err
	}
	if c.ProfileURL != "" {
		c.SyncStatus = existing.SyncStatus
	}
	c.CreatedAt = existing.CreatedAt
	c.LastContactedAt = existing.LastContactedAt
	c.UpdatedAt = s.Now()

	if err := s.store.UpdateContact(ctx, c); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// DeleteContact removes a contact and everything attached to it.
func (s *Service) DeleteContact(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteContact(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// SyncEligibleContacts returns contacts with auto-sync on and a profile URL.
func (s *Service) SyncEligibleContacts(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	var eligible []models.Contact
	for _, c := range contacts {
		if c.SyncEligible() {
			eligible = append(eligible, c)
		}
	}
	return eligible, nil
}

func (s *Service) SetSyncStatus(ctx context.Context, ids []uuid.UUID, status models.SyncStatus) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.store.SetSyncStatus(ctx, ids, status); err != nil {
		return fmt.Errorf("failed to set sync status: %w", err)
	}
	return nil
}

// Dashboard annotates every contact with its due status, sorted by urgency
// and filtered by view. Counts always cover all contacts.
func (s *Service) Dashboard(ctx context.Context, view followup.View) ([]models.ContactStatus, followup.Counts, error) {
	contacts, err := s.ListContacts(ctx)
	if err != nil {
		return nil, followup.Counts{}, err
	}
	interactions, err := s.AllInteractions(ctx)
	if err != nil {
		return nil, followup.Counts{}, err
	}

	statuses := s.Evaluator.Annotate(contacts, interactions, s.Now())
	followup.SortByUrgency(statuses)
	return followup.Filter(statuses, view), followup.Count(statuses), nil
}

// ContactStatus evaluates a single contact.
func (s *Service) ContactStatus(ctx context.Context, id uuid.UUID) (*models.ContactStatus, error) {
	c, err := s.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.History(ctx, id)
	if err != nil {
		return nil, err
	}
	statuses := s.Evaluator.Annotate([]models.Contact{*c}, history, s.Now())
	return &statuses[0], nil
}
