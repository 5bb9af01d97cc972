// ABOUTME: Contact matching for detectors that see email addresses
// ABOUTME: Maps normalized emails to the contacts in the current sync batch
package sync

import (
	"strings"

	"github.com/harperreed/rolodex/models"
)

type contactMatcher struct {
	byEmail map[string]*models.Contact
}

// newContactMatcher indexes contacts by email. Contacts without an email are
// never matched.
func newContactMatcher(contacts []models.Contact) *contactMatcher {
	m := &contactMatcher{
		byEmail: make(map[string]*models.Contact),
	}

	for i := range contacts {
		email := normalizeEmail(contacts[i].Email)
		if email != "" {
			m.byEmail[email] = &contacts[i]
		}
	}

	return m
}

func (m *contactMatcher) empty() bool {
	return len(m.byEmail) == 0
}

func (m *contactMatcher) findByEmail(email string) (*models.Contact, bool) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, false
	}

	contact, found := m.byEmail[normalized]
	return contact, found
}

// normalizeEmail converts email to lowercase for comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
