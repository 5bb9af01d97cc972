// ABOUTME: MCP server assembly
// ABOUTME: Registers every tool, resource and prompt against one service
package handlers

import (
	"github.com/harperreed/rolodex/crm"
	rsync "github.com/harperreed/rolodex/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds the MCP server. orch may be nil when detection is off.
func NewServer(svc *crm.Service, orch *rsync.Orchestrator, version string) *mcp.Server {
	contactHandlers := NewContactHandlers(svc)
	interactionHandlers := NewInteractionHandlers(svc)
	suggestionHandlers := NewSuggestionHandlers(svc, orch)
	resourceHandlers := NewResourceHandlers(svc)
	promptHandlers := NewPromptHandlers(svc)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rolodex",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact with an optional engagement cadence",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts sorted by follow-up urgency with their due status",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update a contact's details, cadence or auto-sync setting",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact along with their interactions and suggestions",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Record a call, coffee, message, email or linkedin interaction with a contact",
	}, interactionHandlers.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "interaction_history",
		Description: "Show a contact's due status, interaction history and pending suggestions",
	}, interactionHandlers.InteractionHistory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_suggestions",
		Description: "List detected interactions waiting for review",
	}, suggestionHandlers.ListSuggestions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_suggestion",
		Description: "Correct the kind, time or notes of a pending suggestion",
	}, suggestionHandlers.EditSuggestion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "accept_suggestion",
		Description: "Accept a pending suggestion, logging it as an interaction",
	}, suggestionHandlers.AcceptSuggestion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dismiss_suggestion",
		Description: "Dismiss a pending suggestion without logging anything",
	}, suggestionHandlers.DismissSuggestion)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_now",
		Description: "Run interaction detection for auto-sync contacts immediately",
	}, suggestionHandlers.SyncNow)

	for _, r := range []*mcp.Resource{
		{URI: uriScheme + "contacts", Name: "contacts", Description: "All contacts with due status", MIMEType: "application/json"},
		{URI: uriScheme + "followups", Name: "followups", Description: "Contacts overdue or due soon", MIMEType: "application/json"},
		{URI: uriScheme + "suggestions", Name: "suggestions", Description: "Pending suggestions", MIMEType: "application/json"},
		{URI: uriScheme + "activity", Name: "activity", Description: "Most recent interactions", MIMEType: "application/json"},
	} {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "contacts/{id}",
		Name:        "contact",
		Description: "One contact with history",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-plan",
		Description: "Plan outreach for contacts who are due",
	}, promptHandlers.GetPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "contact-catch-up",
		Description: "Draft a reconnect message for one contact",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact", Description: "Contact ID or name", Required: true},
		},
	}, promptHandlers.GetPrompt)

	return server
}
