package sync

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
)

func TestOAuthConfigCreation(t *testing.T) {
	config := NewOAuthConfig()
	require.NotNil(t, config)

	assert.Equal(t, []string{calendar.CalendarReadonlyScope}, config.Scopes)
	assert.Equal(t, OAuthRedirectURL, config.RedirectURL)
}

func TestOAuthConfigRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	_, err := OAuthConfig()
	assert.Error(t, err)

	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	config, err := OAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "id", config.ClientID)
}

func TestDefaultTokenFileXDG(t *testing.T) {
	path := DefaultTokenFile().Path

	expectedBase := filepath.Join(xdg.DataHome, "rolodex")
	assert.True(t, strings.HasPrefix(path, expectedBase), "expected path under %s, got %s", expectedBase, path)
	assert.Equal(t, "google-credentials.json", filepath.Base(path))
}

func TestTokenFileRoundTrip(t *testing.T) {
	file := TokenFile{Path: filepath.Join(t.TempDir(), "nested", "token.json")}
	expiry := time.Date(2025, time.March, 15, 13, 0, 0, 0, time.UTC)

	require.NoError(t, file.Save(&oauth2.Token{AccessToken: "a1", RefreshToken: "r1", Expiry: expiry}))

	info, err := os.Stat(file.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, "a1", got.AccessToken)
	assert.Equal(t, "r1", got.RefreshToken)
	assert.True(t, got.Expiry.Equal(expiry))
}

func TestTokenFileLoadMissing(t *testing.T) {
	_, err := TokenFile{Path: filepath.Join(t.TempDir(), "absent.json")}.Load()
	assert.Error(t, err)
}

type sequenceSource struct {
	tokens []*oauth2.Token
	err    error
	calls  int
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	tok := s.tokens[min(s.calls, len(s.tokens)-1)]
	s.calls++
	return tok, nil
}

func TestSavingTokenSourcePersistsRefresh(t *testing.T) {
	file := TokenFile{Path: filepath.Join(t.TempDir(), "token.json")}
	current := &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}
	refreshed := &oauth2.Token{AccessToken: "a2", RefreshToken: "r1"}
	base := &sequenceSource{tokens: []*oauth2.Token{current, refreshed}}
	src := newSavingTokenSource(base, file, current)

	// Still the token we started with: nothing to write.
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "a1", tok.AccessToken)
	_, err = os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err))

	tok, err = src.Token()
	require.NoError(t, err)
	assert.Equal(t, "a2", tok.AccessToken)
	saved, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, "a2", saved.AccessToken)

	// The same refreshed token is not written again.
	require.NoError(t, os.Remove(file.Path))
	_, err = src.Token()
	require.NoError(t, err)
	_, err = os.Stat(file.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestSavingTokenSourcePassesErrors(t *testing.T) {
	file := TokenFile{Path: filepath.Join(t.TempDir(), "token.json")}
	base := &sequenceSource{err: errors.New("invalid_grant")}
	src := newSavingTokenSource(base, file, &oauth2.Token{AccessToken: "a1"})

	_, err := src.Token()
	assert.EqualError(t, err, "invalid_grant")
}
