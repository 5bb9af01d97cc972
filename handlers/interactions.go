// ABOUTME: Interaction MCP tool handlers
// ABOUTME: Implements log_interaction and interaction_history tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type InteractionHandlers struct {
	svc *crm.Service
}

func NewInteractionHandlers(svc *crm.Service) *InteractionHandlers {
	return &InteractionHandlers{svc: svc}
}

type LogInteractionInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID or exact name (required)"`
	Kind      string `json:"kind" jsonschema:"call, coffee, message, email, or linkedin (required)"`
	Timestamp string `json:"timestamp,omitempty" jsonschema:"When it happened (RFC3339, defaults to now)"`
	Notes     string `json:"notes,omitempty" jsonschema:"Notes about the interaction"`
}

type InteractionOutput struct {
	ID         string `json:"id"`
	ContactID  string `json:"contact_id"`
	Kind       string `json:"kind"`
	Timestamp  string `json:"timestamp"`
	Notes      string `json:"notes,omitempty"`
	Provenance string `json:"provenance"`
	AutoLogged bool   `json:"auto_logged,omitempty"`
}

func (h *InteractionHandlers) LogInteraction(ctx context.Context, request *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, InteractionOutput, error) {
	if input.ContactID == "" {
		return nil, InteractionOutput{}, fmt.Errorf("contact_id is required")
	}

	contact, err := h.svc.ResolveContact(ctx, input.ContactID)
	if err != nil {
		return nil, InteractionOutput{}, err
	}

	kind, err := models.ParseInteractionKind(input.Kind)
	if err != nil {
		return nil, InteractionOutput{}, err
	}

	in := &models.Interaction{ContactID: contact.ID, Kind: kind, Notes: input.Notes}
	if input.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, input.Timestamp)
		if err != nil {
			return nil, InteractionOutput{}, fmt.Errorf("invalid timestamp format (use RFC3339): %w", err)
		}
		in.Timestamp = ts
	}

	if err := h.svc.LogInteraction(ctx, in); err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil, interactionToOutput(in), nil
}

type InteractionHistoryInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact ID or exact name (required)"`
}

type InteractionHistoryOutput struct {
	Contact      ContactOutput       `json:"contact"`
	Interactions []InteractionOutput `json:"interactions"`
	Pending      []SuggestionOutput  `json:"pending_suggestions"`
}

func (h *InteractionHandlers) InteractionHistory(ctx context.Context, request *mcp.CallToolRequest, input InteractionHistoryInput) (*mcp.CallToolResult, InteractionHistoryOutput, error) {
	if input.ContactID == "" {
		return nil, InteractionHistoryOutput{}, fmt.Errorf("contact_id is required")
	}

	contact, err := h.svc.ResolveContact(ctx, input.ContactID)
	if err != nil {
		return nil, InteractionHistoryOutput{}, err
	}
	status, err := h.svc.ContactStatus(ctx, contact.ID)
	if err != nil {
		return nil, InteractionHistoryOutput{}, err
	}
	history, err := h.svc.History(ctx, contact.ID)
	if err != nil {
		return nil, InteractionHistoryOutput{}, err
	}
	pending, err := h.svc.SuggestionsForContact(ctx, contact.ID)
	if err != nil {
		return nil, InteractionHistoryOutput{}, err
	}

	out := InteractionHistoryOutput{
		Contact:      statusToOutput(*status),
		Interactions: make([]InteractionOutput, len(history)),
		Pending:      make([]SuggestionOutput, len(pending)),
	}
	for i := range history {
		out.Interactions[i] = interactionToOutput(&history[i])
	}
	for i := range pending {
		out.Pending[i] = suggestionToOutput(&pending[i])
	}
	return nil, out, nil
}

func interactionToOutput(in *models.Interaction) InteractionOutput {
	return InteractionOutput{
		ID:         in.ID.String(),
		ContactID:  in.ContactID.String(),
		Kind:       string(in.Kind),
		Timestamp:  formatTime(in.Timestamp),
		Notes:      in.Notes,
		Provenance: string(in.Provenance),
		AutoLogged: in.AutoLogged,
	}
}
