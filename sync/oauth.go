// ABOUTME: Google OAuth credentials and the token file behind the calendar detector
// ABOUTME: Tokens refreshed by a long-running scheduler are written back to disk
package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	gosync "sync"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// OAuthRedirectURL must match the callback served by `sync init`.
const OAuthRedirectURL = "http://localhost:8080/oauth/callback"

// NewOAuthConfig builds the read-only calendar OAuth config from
// GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.
func NewOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  OAuthRedirectURL,
		Scopes:       []string{calendar.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// OAuthConfig returns the OAuth config, failing when credentials are missing.
func OAuthConfig() (*oauth2.Config, error) {
	cfg := NewOAuthConfig()
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}
	return cfg, nil
}

// TokenFile is where the calendar token lives between runs.
type TokenFile struct {
	Path string
}

// DefaultTokenFile is the token under the XDG data directory.
func DefaultTokenFile() TokenFile {
	return TokenFile{Path: filepath.Join(xdg.DataHome, "rolodex", "google-credentials.json")}
}

// Save writes token with owner-only permissions.
func (f TokenFile) Save(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (f TokenFile) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return &token, nil
}

// savingTokenSource writes every newly issued access token back to file.
type savingTokenSource struct {
	base oauth2.TokenSource
	file TokenFile

	mu   gosync.Mutex
	last string
}

func newSavingTokenSource(base oauth2.TokenSource, file TokenFile, current *oauth2.Token) *savingTokenSource {
	return &savingTokenSource{base: base, file: file, last: current.AccessToken}
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken == s.last {
		return token, nil
	}
	if err := s.file.Save(token); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	s.last = token.AccessToken
	return token, nil
}
