// ABOUTME: MCP resource handlers exposing relationship data
// ABOUTME: Provides read-only JSON views of contacts, follow-ups and suggestions via rolodex:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/followup"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "rolodex://"

type ResourceHandlers struct {
	svc *crm.Service
}

func NewResourceHandlers(svc *crm.Service) *ResourceHandlers {
	return &ResourceHandlers{svc: svc}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	switch parts[0] {
	case "contacts":
		if len(parts) == 1 || parts[1] == "" {
			return h.readDashboard(ctx, uri, followup.ViewAll)
		}
		return h.readContact(ctx, uri, parts[1])
	case "followups":
		return h.readDashboard(ctx, uri, followup.ViewDue)
	case "suggestions":
		return h.readSuggestions(ctx, uri)
	case "activity":
		return h.readActivity(ctx, uri)
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readDashboard(ctx context.Context, uri string, view followup.View) (*mcp.ReadResourceResult, error) {
	statuses, counts, err := h.svc.Dashboard(ctx, view)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	out := ListContactsOutput{Contacts: make([]ContactOutput, len(statuses)), Counts: counts}
	for i, s := range statuses {
		out.Contacts[i] = statusToOutput(s)
	}
	return jsonResource(uri, out)
}

func (h *ResourceHandlers) readContact(ctx context.Context, uri, ref string) (*mcp.ReadResourceResult, error) {
	contact, err := h.svc.ResolveContact(ctx, ref)
	if err != nil {
		return nil, err
	}
	status, err := h.svc.ContactStatus(ctx, contact.ID)
	if err != nil {
		return nil, err
	}
	history, err := h.svc.History(ctx, contact.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	detail := InteractionHistoryOutput{
		Contact:      statusToOutput(*status),
		Interactions: make([]InteractionOutput, len(history)),
	}
	for i := range history {
		detail.Interactions[i] = interactionToOutput(&history[i])
	}
	return jsonResource(uri, detail)
}

func (h *ResourceHandlers) readSuggestions(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	pending, err := h.svc.PendingSuggestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}
	out := make([]SuggestionOutput, len(pending))
	for i := range pending {
		out[i] = suggestionToOutput(&pending[i])
	}
	return jsonResource(uri, out)
}

func (h *ResourceHandlers) readActivity(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	recent, err := h.svc.RecentInteractions(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity: %w", err)
	}
	out := make([]InteractionOutput, len(recent))
	for i := range recent {
		out[i] = interactionToOutput(&recent[i])
	}
	return jsonResource(uri, out)
}
