package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewCalendarClient(t *testing.T) {
	token := &oauth2.Token{
		AccessToken:  "test-access-token",
		TokenType:    "Bearer",
		RefreshToken: "test-refresh-token",
		Expiry:       time.Now().Add(1 * time.Hour),
	}
	file := TokenFile{Path: filepath.Join(t.TempDir(), "token.json")}

	service, err := NewCalendarClient(context.Background(), token, file)
	require.NoError(t, err)
	assert.NotNil(t, service)
}

func TestNewCalendarClientNilToken(t *testing.T) {
	service, err := NewCalendarClient(context.Background(), nil, TokenFile{})
	assert.Error(t, err)
	assert.Nil(t, service)
}
