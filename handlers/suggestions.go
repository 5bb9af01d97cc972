// ABOUTME: Suggestion review MCP tool handlers
// ABOUTME: Implements list, edit, accept and dismiss tools plus sync_now
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/models"
	rsync "github.com/harperreed/rolodex/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SuggestionHandlers struct {
	svc  *crm.Service
	orch *rsync.Orchestrator
}

// NewSuggestionHandlers wires the review tools. orch may be nil, in which
// case sync_now reports that detection is disabled.
func NewSuggestionHandlers(svc *crm.Service, orch *rsync.Orchestrator) *SuggestionHandlers {
	return &SuggestionHandlers{svc: svc, orch: orch}
}

type SuggestionOutput struct {
	ID          string `json:"id"`
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	Kind        string `json:"kind"`
	Timestamp   string `json:"timestamp"`
	Notes       string `json:"notes,omitempty"`
	DetectedAt  string `json:"detected_at"`
}

type ListSuggestionsInput struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"Only suggestions for this contact (ID or exact name)"`
}

type ListSuggestionsOutput struct {
	Suggestions []SuggestionOutput `json:"suggestions"`
}

func (h *SuggestionHandlers) ListSuggestions(ctx context.Context, request *mcp.CallToolRequest, input ListSuggestionsInput) (*mcp.CallToolResult, ListSuggestionsOutput, error) {
	var (
		pending []models.Suggestion
		err     error
	)
	if input.ContactID != "" {
		contact, rerr := h.svc.ResolveContact(ctx, input.ContactID)
		if rerr != nil {
			return nil, ListSuggestionsOutput{}, rerr
		}
		pending, err = h.svc.SuggestionsForContact(ctx, contact.ID)
	} else {
		pending, err = h.svc.PendingSuggestions(ctx)
	}
	if err != nil {
		return nil, ListSuggestionsOutput{}, fmt.Errorf("failed to list suggestions: %w", err)
	}

	out := ListSuggestionsOutput{Suggestions: make([]SuggestionOutput, len(pending))}
	for i := range pending {
		out.Suggestions[i] = suggestionToOutput(&pending[i])
	}
	return nil, out, nil
}

type EditSuggestionInput struct {
	ID        string  `json:"id" jsonschema:"Suggestion ID (required)"`
	Kind      *string `json:"kind,omitempty" jsonschema:"Corrected interaction kind"`
	Timestamp *string `json:"timestamp,omitempty" jsonschema:"Corrected time (RFC3339)"`
	Notes     *string `json:"notes,omitempty" jsonschema:"Corrected notes"`
}

type ReviewOutput struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Interaction *InteractionOutput `json:"interaction,omitempty"`
}

func (h *SuggestionHandlers) EditSuggestion(ctx context.Context, request *mcp.CallToolRequest, input EditSuggestionInput) (*mcp.CallToolResult, ReviewOutput, error) {
	if input.ID == "" {
		return nil, ReviewOutput{}, fmt.Errorf("id is required")
	}

	var edit crm.SuggestionEdit
	if input.Kind != nil {
		kind, err := models.ParseInteractionKind(*input.Kind)
		if err != nil {
			return nil, ReviewOutput{}, err
		}
		edit.Kind = &kind
	}
	if input.Timestamp != nil {
		ts, err := time.Parse(time.RFC3339, *input.Timestamp)
		if err != nil {
			return nil, ReviewOutput{}, fmt.Errorf("invalid timestamp format (use RFC3339): %w", err)
		}
		edit.Timestamp = &ts
	}
	edit.Notes = input.Notes

	ok, err := h.svc.EditSuggestion(ctx, input.ID, edit)
	if err != nil {
		return nil, ReviewOutput{}, err
	}
	if !ok {
		return nil, ReviewOutput{Message: "No pending suggestion with that id"}, nil
	}
	return nil, ReviewOutput{Success: true, Message: "Suggestion updated"}, nil
}

type SuggestionIDInput struct {
	ID string `json:"id" jsonschema:"Suggestion ID (required)"`
}

func (h *SuggestionHandlers) AcceptSuggestion(ctx context.Context, request *mcp.CallToolRequest, input SuggestionIDInput) (*mcp.CallToolResult, ReviewOutput, error) {
	if input.ID == "" {
		return nil, ReviewOutput{}, fmt.Errorf("id is required")
	}

	in, err := h.svc.AcceptSuggestion(ctx, input.ID)
	if err != nil {
		return nil, ReviewOutput{}, err
	}
	if in == nil {
		return nil, ReviewOutput{Message: "No pending suggestion with that id"}, nil
	}
	out := interactionToOutput(in)
	return nil, ReviewOutput{Success: true, Message: "Suggestion accepted", Interaction: &out}, nil
}

func (h *SuggestionHandlers) DismissSuggestion(ctx context.Context, request *mcp.CallToolRequest, input SuggestionIDInput) (*mcp.CallToolResult, ReviewOutput, error) {
	if input.ID == "" {
		return nil, ReviewOutput{}, fmt.Errorf("id is required")
	}
	if err := h.svc.DismissSuggestion(ctx, input.ID); err != nil {
		return nil, ReviewOutput{}, err
	}
	return nil, ReviewOutput{Success: true, Message: "Suggestion dismissed"}, nil
}

type SyncNowInput struct{}

type SyncNowOutput struct {
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
	Eligible   int    `json:"eligible"`
	Detected   int    `json:"detected"`
	Duplicates int    `json:"duplicates"`
	Added      int    `json:"added"`
	Error      string `json:"error,omitempty"`
	Summary    string `json:"summary"`
}

func (h *SuggestionHandlers) SyncNow(ctx context.Context, request *mcp.CallToolRequest, input SyncNowInput) (*mcp.CallToolResult, SyncNowOutput, error) {
	if h.orch == nil {
		return nil, SyncNowOutput{}, fmt.Errorf("interaction detection is disabled")
	}
	res := h.orch.RunCycle(ctx, rsync.TriggerManual)
	out := SyncNowOutput{
		Skipped:    res.Skipped,
		SkipReason: res.SkipReason,
		Eligible:   res.Eligible,
		Detected:   res.Detected,
		Duplicates: res.Duplicates,
		Added:      res.Added,
		Summary:    res.String(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return nil, out, nil
}

func suggestionToOutput(s *models.Suggestion) SuggestionOutput {
	return SuggestionOutput{
		ID:          s.ID,
		ContactID:   s.ContactID.String(),
		ContactName: s.ContactName,
		Kind:        string(s.Kind),
		Timestamp:   formatTime(s.Timestamp),
		Notes:       s.Notes,
		DetectedAt:  formatTime(s.DetectedAt),
	}
}
