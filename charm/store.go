// ABOUTME: crm.Store backed by a single JSON snapshot in Charm KV
// ABOUTME: Loads once at startup and rewrites the whole snapshot on every mutation
package charm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/models"
)

// SnapshotKey is the fixed key holding all rolodex data.
const SnapshotKey = "rolodex/snapshot"

const snapshotVersion = 1

type snapshot struct {
	Version      int                  `json:"version"`
	Contacts     []models.Contact     `json:"contacts"`
	Interactions []models.Interaction `json:"interactions"`
	Suggestions  []models.Suggestion  `json:"suggestions"`
}

func (s snapshot) clone() snapshot {
	return snapshot{
		Version:      s.Version,
		Contacts:     append([]models.Contact(nil), s.Contacts...),
		Interactions: append([]models.Interaction(nil), s.Interactions...),
		Suggestions:  append([]models.Suggestion(nil), s.Suggestions...),
	}
}

// kvClient is the subset of Client the store needs.
type kvClient interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Close() error
}

// Store implements crm.Store on Charm KV.
type Store struct {
	client kvClient
	logger *log.Logger

	mu   sync.RWMutex
	snap snapshot
}

var _ crm.Store = (*Store)(nil)

// NewStore loads the snapshot from client. A missing snapshot starts empty;
// one that fails to decode is logged and replaced by an empty snapshot.
func NewStore(client *Client, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Store{client: client, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the snapshot, picking up changes pulled by a sync.
func (s *Store) Reload() error {
	data, err := s.client.Get([]byte(SnapshotKey))
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap := snapshot{Version: snapshotVersion}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &snap); err != nil {
			s.logger.Warn("discarding unreadable snapshot", "key", SnapshotKey, "err", err)
			snap = snapshot{Version: snapshotVersion}
		}
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

// Stats reports entity counts for diagnostics.
func (s *Store) Stats() (contacts, interactions, suggestions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.Contacts), len(s.snap.Interactions), len(s.snap.Suggestions)
}

// mutate applies fn to a copy of the snapshot and persists it. The in-memory
// snapshot only changes once the write succeeds.
func (s *Store) mutate(fn func(*snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.clone()
	if err := fn(&next); err != nil {
		return err
	}
	next.Version = snapshotVersion

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.client.Set([]byte(SnapshotKey), data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.snap = next
	return nil
}

func (snap *snapshot) contactIndex(id uuid.UUID) int {
	for i := range snap.Contacts {
		if snap.Contacts[i].ID == id {
			return i
		}
	}
	return -1
}

func (snap *snapshot) suggestionIndex(id string) int {
	for i := range snap.Suggestions {
		if snap.Suggestions[i].ID == id {
			return i
		}
	}
	return -1
}

func (snap *snapshot) addInteraction(in *models.Interaction) {
	snap.Interactions = append(snap.Interactions, *in)
	if i := snap.contactIndex(in.ContactID); i >= 0 {
		c := &snap.Contacts[i]
		if c.LastContactedAt == nil || in.Timestamp.After(*c.LastContactedAt) {
			ts := in.Timestamp
			c.LastContactedAt = &ts
		}
	}
}

func (s *Store) CreateContact(_ context.Context, c *models.Contact) error {
	return s.mutate(func(snap *snapshot) error {
		if snap.contactIndex(c.ID) >= 0 {
			return fmt.Errorf("contact %s already exists", c.ID)
		}
		snap.Contacts = append(snap.Contacts, *c)
		return nil
	})
}

func (s *Store) GetContact(_ context.Context, id uuid.UUID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.snap.contactIndex(id); i >= 0 {
		c := s.snap.Contacts[i]
		return &c, nil
	}
	return nil, nil
}

func (s *Store) ListContacts(_ context.Context) ([]models.Contact, error) {
	s.mu.RLock()
	out := append([]models.Contact(nil), s.snap.Contacts...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) UpdateContact(_ context.Context, c *models.Contact) error {
	return s.mutate(func(snap *snapshot) error {
		if i := snap.contactIndex(c.ID); i >= 0 {
			snap.Contacts[i] = *c
		}
		return nil
	})
}

func (s *Store) DeleteContact(_ context.Context, id uuid.UUID) error {
	return s.mutate(func(snap *snapshot) error {
		contacts := snap.Contacts[:0]
		for _, c := range snap.Contacts {
			if c.ID != id {
				contacts = append(contacts, c)
			}
		}
		snap.Contacts = contacts

		interactions := snap.Interactions[:0]
		for _, in := range snap.Interactions {
			if in.ContactID != id {
				interactions = append(interactions, in)
			}
		}
		snap.Interactions = interactions

		suggestions := snap.Suggestions[:0]
		for _, sug := range snap.Suggestions {
			if sug.ContactID != id {
				suggestions = append(suggestions, sug)
			}
		}
		snap.Suggestions = suggestions
		return nil
	})
}

func (s *Store) SetSyncStatus(_ context.Context, ids []uuid.UUID, status models.SyncStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return s.mutate(func(snap *snapshot) error {
		for _, id := range ids {
			if i := snap.contactIndex(id); i >= 0 {
				snap.Contacts[i].SyncStatus = status
			}
		}
		return nil
	})
}

func (s *Store) AddInteraction(_ context.Context, in *models.Interaction) error {
	return s.mutate(func(snap *snapshot) error {
		snap.addInteraction(in)
		return nil
	})
}

func (s *Store) DeleteInteraction(_ context.Context, id uuid.UUID) error {
	s.mu.RLock()
	found := false
	for _, in := range s.snap.Interactions {
		if in.ID == id {
			found = true
			break
		}
	}
	s.mu.RUnlock()
	if !found {
		return nil
	}

	return s.mutate(func(snap *snapshot) error {
		interactions := snap.Interactions[:0]
		for _, in := range snap.Interactions {
			if in.ID != id {
				interactions = append(interactions, in)
			}
		}
		snap.Interactions = interactions
		return nil
	})
}

// sortedInteractions returns matching interactions newest first; the stable
// sort keeps insertion order for equal timestamps.
func (s *Store) sortedInteractions(keep func(models.Interaction) bool) []models.Interaction {
	s.mu.RLock()
	var out []models.Interaction
	for _, in := range s.snap.Interactions {
		if keep(in) {
			out = append(out, in)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (s *Store) ListInteractions(_ context.Context) ([]models.Interaction, error) {
	return s.sortedInteractions(func(models.Interaction) bool { return true }), nil
}

func (s *Store) InteractionsForContact(_ context.Context, contactID uuid.UUID) ([]models.Interaction, error) {
	return s.sortedInteractions(func(in models.Interaction) bool { return in.ContactID == contactID }), nil
}

func (s *Store) RecentInteractions(_ context.Context, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}
	all := s.sortedInteractions(func(models.Interaction) bool { return true })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) AddSuggestion(_ context.Context, sug *models.Suggestion) error {
	return s.mutate(func(snap *snapshot) error {
		if snap.suggestionIndex(sug.ID) >= 0 {
			return fmt.Errorf("suggestion %s already exists", sug.ID)
		}
		snap.Suggestions = append(snap.Suggestions, *sug)
		return nil
	})
}

func (s *Store) GetSuggestion(_ context.Context, id string) (*models.Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.snap.suggestionIndex(id); i >= 0 {
		sug := s.snap.Suggestions[i]
		return &sug, nil
	}
	return nil, nil
}

func (s *Store) UpdateSuggestion(_ context.Context, sug *models.Suggestion) error {
	return s.mutate(func(snap *snapshot) error {
		if i := snap.suggestionIndex(sug.ID); i >= 0 {
			snap.Suggestions[i] = *sug
		}
		return nil
	})
}

func (s *Store) DeleteSuggestion(_ context.Context, id string) error {
	s.mu.RLock()
	found := s.snap.suggestionIndex(id) >= 0
	s.mu.RUnlock()
	if !found {
		return nil
	}

	return s.mutate(func(snap *snapshot) error {
		if i := snap.suggestionIndex(id); i >= 0 {
			snap.Suggestions = append(snap.Suggestions[:i], snap.Suggestions[i+1:]...)
		}
		return nil
	})
}

func (s *Store) filterSuggestions(keep func(models.Suggestion) bool) []models.Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Suggestion
	for _, sug := range s.snap.Suggestions {
		if sug.Status == models.SuggestionPending && keep(sug) {
			out = append(out, sug)
		}
	}
	return out
}

func (s *Store) PendingSuggestions(_ context.Context) ([]models.Suggestion, error) {
	return s.filterSuggestions(func(models.Suggestion) bool { return true }), nil
}

func (s *Store) SuggestionsForContact(_ context.Context, contactID uuid.UUID) ([]models.Suggestion, error) {
	return s.filterSuggestions(func(sug models.Suggestion) bool { return sug.ContactID == contactID }), nil
}

func (s *Store) AcceptSuggestion(_ context.Context, id string, in *models.Interaction) (bool, error) {
	accepted := false
	err := s.mutate(func(snap *snapshot) error {
		i := snap.suggestionIndex(id)
		if i < 0 || snap.Suggestions[i].Status != models.SuggestionPending {
			return errNothingToAccept
		}
		snap.Suggestions = append(snap.Suggestions[:i], snap.Suggestions[i+1:]...)
		// A contact deleted after detection takes its suggestion with it.
		if snap.contactIndex(in.ContactID) < 0 {
			return nil
		}
		snap.addInteraction(in)
		accepted = true
		return nil
	})
	if errors.Is(err, errNothingToAccept) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return accepted, nil
}

var errNothingToAccept = errors.New("no pending suggestion")

func (s *Store) Close() error {
	return s.client.Close()
}
