// ABOUTME: Profile lookup against the Lix person API
// ABOUTME: Used only to pre-fill new contacts; never writes to the store
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultProfileEndpoint is the Lix person lookup endpoint.
const DefaultProfileEndpoint = "https://api.lix-it.com/v1/person"

var (
	ErrProfileNotFound       = errors.New("profile not found")
	ErrProfileLookupDisabled = errors.New("profile lookup is not configured")
	ErrProfileURLRequired    = errors.New("profile URL is required")
)

// Profile is the best-effort record used to pre-fill a contact.
type Profile struct {
	Name       string `json:"name"`
	Company    string `json:"company"`
	Role       string `json:"role"`
	ProfileURL string `json:"profile_url"`
	Location   string `json:"location"`
	Bio        string `json:"bio"`
}

type lixPerson struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Link             string `json:"link"`
	Location         string `json:"location"`
	AboutSummaryText string `json:"aboutSummaryText"`
	Experience       []struct {
		Title        string `json:"title"`
		Organisation struct {
			Name string `json:"name"`
		} `json:"organisation"`
	} `json:"experience"`
}

// ProfileClient looks up public profiles by URL.
type ProfileClient struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func NewProfileClient(apiKey string) *ProfileClient {
	return &ProfileClient{
		Endpoint: DefaultProfileEndpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: 20 * time.Second},
	}
}

// Lookup fetches the profile at profileURL. The most recent experience
// entry supplies company and role.
func (p *ProfileClient) Lookup(ctx context.Context, profileURL string) (*Profile, error) {
	profileURL = strings.TrimSpace(profileURL)
	if profileURL == "" {
		return nil, ErrProfileURLRequired
	}
	if p.APIKey == "" {
		return nil, ErrProfileLookupDisabled
	}

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = DefaultProfileEndpoint
	}
	reqURL := endpoint + "?profile_link=" + url.QueryEscape(profileURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Authorization", p.APIKey)

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProfileNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("profile lookup returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var person lixPerson
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	profile := &Profile{
		Name:       person.Name,
		Role:       person.Description,
		ProfileURL: person.Link,
		Location:   person.Location,
		Bio:        person.AboutSummaryText,
	}
	if len(person.Experience) > 0 {
		current := person.Experience[0]
		profile.Company = current.Organisation.Name
		if current.Title != "" {
			profile.Role = current.Title
		}
	}
	if profile.ProfileURL == "" {
		profile.ProfileURL = profileURL
	}
	return profile, nil
}
