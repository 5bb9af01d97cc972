// ABOUTME: Detector that asks an HTTP relay for candidates in one request per cycle
// ABOUTME: Non-2xx responses, timeouts and malformed payloads are all errors
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/rolodex/models"
)

const maxRelayResponse = 1 << 20

type relayContact struct {
	ContactID  uuid.UUID `json:"contact_id"`
	Name       string    `json:"name"`
	ProfileURL string    `json:"profile_url"`
}

type relayRequest struct {
	Contacts []relayContact `json:"contacts"`
}

// HTTPDetector posts the eligible batch to URL and expects a JSON array of
// candidates back.
type HTTPDetector struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewHTTPDetector(url, apiKey string) *HTTPDetector {
	return &HTTPDetector{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *HTTPDetector) Detect(ctx context.Context, contacts []models.Contact) ([]models.DetectedInteraction, error) {
	body := relayRequest{Contacts: make([]relayContact, 0, len(contacts))}
	for _, c := range contacts {
		body.Contacts = append(body.Contacts, relayContact{ContactID: c.ID, Name: c.Name, ProfileURL: c.ProfileURL})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detection request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build detection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.APIKey != "" {
		req.Header.Set("Authorization", d.APIKey)
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayResponse))
	if err != nil {
		return nil, fmt.Errorf("failed to read detection response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("detection relay returned %s", resp.Status)
	}

	var candidates []models.DetectedInteraction
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("malformed detection response: %w", err)
	}
	for i, c := range candidates {
		if !c.Kind.Valid() {
			return nil, fmt.Errorf("malformed detection response: candidate %d has kind %q", i, c.Kind)
		}
		if c.Timestamp.IsZero() {
			return nil, fmt.Errorf("malformed detection response: candidate %d has no timestamp", i)
		}
	}
	return candidates, nil
}
