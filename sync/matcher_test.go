package sync

import (
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchContactByEmail(t *testing.T) {
	existing := []models.Contact{
		{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"},
		{ID: uuid.New(), Name: "Bob", Email: "Bob@Example.com "},
		{ID: uuid.New(), Name: "No Email"},
	}

	matcher := newContactMatcher(existing)
	require.False(t, matcher.empty())

	match, found := matcher.findByEmail("ALICE@example.com")
	require.True(t, found)
	assert.Equal(t, existing[0].ID, match.ID)

	match, found = matcher.findByEmail("bob@example.com")
	require.True(t, found)
	assert.Equal(t, "Bob", match.Name)

	_, found = matcher.findByEmail("charlie@example.com")
	assert.False(t, found)

	_, found = matcher.findByEmail("")
	assert.False(t, found)
}

func TestMatcherEmpty(t *testing.T) {
	matcher := newContactMatcher([]models.Contact{{ID: uuid.New(), Name: "No Email"}})
	assert.True(t, matcher.empty())
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Alice@Example.com", "alice@example.com"},
		{"alice.smith@example.com", "alice.smith@example.com"},
		{"  ALICE@EXAMPLE.COM ", "alice@example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeEmail(tt.input), "normalizeEmail(%q)", tt.input)
	}
}
