// ABOUTME: MCP prompt handlers for relationship workflows
// ABOUTME: Builds follow-up planning and contact catch-up prompts from live data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	svc *crm.Service
}

func NewPromptHandlers(svc *crm.Service) *PromptHandlers {
	return &PromptHandlers{svc: svc}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch name := request.Params.Name; name {
	case "follow-up-plan":
		return h.followUpPlan(ctx)
	case "contact-catch-up":
		return h.contactCatchUp(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func describeStatus(s models.ContactStatus) string {
	switch {
	case s.DaysSince == nil:
		return fmt.Sprintf("%s, never contacted", s.DueStatus.Label())
	case *s.DaysSince == 1:
		return fmt.Sprintf("%s, last contact 1 day ago", s.DueStatus.Label())
	}
	return fmt.Sprintf("%s, last contact %d days ago", s.DueStatus.Label(), *s.DaysSince)
}

func (h *PromptHandlers) followUpPlan(ctx context.Context) (*mcp.GetPromptResult, error) {
	due, _, err := h.svc.Dashboard(ctx, followup.ViewDue)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Contacts that are overdue or due soon for a check-in:\n\n")
	for _, s := range due {
		fmt.Fprintf(&promptText, "- %s (%s, %s cadence): %s\n",
			s.Contact.Name, s.Contact.Relationship, s.Contact.Frequency, describeStatus(s))
	}
	if len(due) == 0 {
		promptText.WriteString("Everyone is on track.\n")
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Prioritize which contacts to reach out to first")
	promptText.WriteString("\n2. Suggest a personalized opener for each")

	return userPrompt("Follow-up plan for due contacts", promptText.String()), nil
}

func (h *PromptHandlers) contactCatchUp(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	ref, ok := args["contact"]
	if !ok || ref == "" {
		return nil, fmt.Errorf("contact is required")
	}

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

	var promptText strings.Builder
	fmt.Fprintf(&promptText, "Contact: %s\n", contact.Name)
	if contact.Role != "" || contact.Company != "" {
		fmt.Fprintf(&promptText, "Role: %s %s\n", contact.Role, contact.Company)
	}
	fmt.Fprintf(&promptText, "Status: %s\n", describeStatus(*status))
	if contact.Notes != "" {
		fmt.Fprintf(&promptText, "Notes: %s\n", contact.Notes)
	}

	promptText.WriteString("\nRecent interactions:\n")
	for i, in := range history {
		if i == 5 {
			break
		}
		fmt.Fprintf(&promptText, "- %s %s: %s\n", in.Timestamp.Format("2006-01-02"), in.Kind, in.Notes)
	}
	if len(history) == 0 {
		promptText.WriteString("- none logged\n")
	}

	promptText.WriteString("\nDraft a short, warm message to reconnect that builds on our history.")

	return userPrompt(fmt.Sprintf("Catch-up for %s", contact.Name), promptText.String()), nil
}
