// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements add_contact, list_contacts, update_contact, and delete_contact tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	svc *crm.Service
}

func NewContactHandlers(svc *crm.Service) *ContactHandlers {
	return &ContactHandlers{svc: svc}
}

type AddContactInput struct {
	Name         string `json:"name" jsonschema:"Contact name (required)"`
	Company      string `json:"company,omitempty" jsonschema:"Company the contact works at"`
	Role         string `json:"role,omitempty" jsonschema:"Job title or role"`
	Email        string `json:"email,omitempty" jsonschema:"Contact email address"`
	ProfileURL   string `json:"profile_url,omitempty" jsonschema:"External profile URL (required for auto-sync)"`
	Notes        string `json:"notes,omitempty" jsonschema:"Additional notes about the contact"`
	Relationship string `json:"relationship,omitempty" jsonschema:"peer, mentor, or client (default peer)"`
	Frequency    string `json:"frequency,omitempty" jsonschema:"weekly, biweekly, monthly, quarterly, biannually, annually, or none"`
	AutoSync     bool   `json:"auto_sync,omitempty" jsonschema:"Include in automatic interaction detection"`
}

type ContactOutput struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Company         string  `json:"company,omitempty"`
	Role            string  `json:"role,omitempty"`
	Email           string  `json:"email,omitempty"`
	ProfileURL      string  `json:"profile_url,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	Relationship    string  `json:"relationship"`
	Frequency       string  `json:"frequency"`
	AutoSync        bool    `json:"auto_sync"`
	SyncStatus      string  `json:"sync_status"`
	DueStatus       string  `json:"due_status,omitempty"`
	DaysSince       *int    `json:"days_since,omitempty"`
	LastContactedAt *string `json:"last_contacted_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, request *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.Name == "" {
		return nil, ContactOutput{}, fmt.Errorf("name is required")
	}

	freq, err := models.ParseFrequency(input.Frequency)
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact := &models.Contact{
		Name:         input.Name,
		Company:      input.Company,
		Role:         input.Role,
		Email:        input.Email,
		ProfileURL:   input.ProfileURL,
		Notes:        input.Notes,
		Relationship: models.RelationshipType(input.Relationship),
		Frequency:    freq,
		AutoSync:     input.AutoSync,
	}
	if err := h.svc.CreateContact(ctx, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type ListContactsInput struct {
	View string `json:"view,omitempty" jsonschema:"all, due (overdue and due soon), or recent (on track); default all"`
}

type ListContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Counts   followup.Counts `json:"counts"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, request *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ListContactsOutput, error) {
	view, err := followup.ParseView(input.View)
	if err != nil {
		return nil, ListContactsOutput{}, err
	}

	statuses, counts, err := h.svc.Dashboard(ctx, view)
	if err != nil {
		return nil, ListContactsOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	result := make([]ContactOutput, len(statuses))
	for i, s := range statuses {
		result[i] = statusToOutput(s)
	}
	return nil, ListContactsOutput{Contacts: result, Counts: counts}, nil
}

// UpdateContactInput uses pointers so omitted fields are left alone and
// empty strings clear a field.
type UpdateContactInput struct {
	ID           string  `json:"id" jsonschema:"Contact ID or exact name (required)"`
	Name         *string `json:"name,omitempty" jsonschema:"Updated contact name"`
	Company      *string `json:"company,omitempty" jsonschema:"Updated company"`
	Role         *string `json:"role,omitempty" jsonschema:"Updated role"`
	Email        *string `json:"email,omitempty" jsonschema:"Updated email address"`
	ProfileURL   *string `json:"profile_url,omitempty" jsonschema:"Updated profile URL; empty disables auto-sync"`
	Notes        *string `json:"notes,omitempty" jsonschema:"Updated notes"`
	Relationship *string `json:"relationship,omitempty" jsonschema:"peer, mentor, or client"`
	Frequency    *string `json:"frequency,omitempty" jsonschema:"Engagement cadence or none"`
	AutoSync     *bool   `json:"auto_sync,omitempty" jsonschema:"Include in automatic interaction detection"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, request *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}

	contact, err := h.svc.ResolveContact(ctx, input.ID)
	if err != nil {
		return nil, ContactOutput{}, err
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&contact.Name, input.Name)
	setString(&contact.Company, input.Company)
	setString(&contact.Role, input.Role)
	setString(&contact.Email, input.Email)
	setString(&contact.ProfileURL, input.ProfileURL)
	setString(&contact.Notes, input.Notes)
	if input.Relationship != nil {
		contact.Relationship = models.RelationshipType(*input.Relationship)
	}
	if input.Frequency != nil {
		freq, err := models.ParseFrequency(*input.Frequency)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		contact.Frequency = freq
	}
	if input.AutoSync != nil {
		contact.AutoSync = *input.AutoSync
	}

	if err := h.svc.UpdateContact(ctx, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type DeleteContactInput struct {
	ID string `json:"id" jsonschema:"Contact ID or exact name (required)"`
}

type DeleteContactOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, request *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteContactOutput, error) {
	if input.ID == "" {
		return nil, DeleteContactOutput{}, fmt.Errorf("id is required")
	}

	contact, err := h.svc.ResolveContact(ctx, input.ID)
	if err != nil {
		return nil, DeleteContactOutput{}, err
	}

	if err := h.svc.DeleteContact(ctx, contact.ID); err != nil {
		return nil, DeleteContactOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}

	return nil, DeleteContactOutput{
		Success: true,
		Message: fmt.Sprintf("Deleted contact %s and their history", contact.Name),
	}, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func contactToOutput(contact *models.Contact) ContactOutput {
	output := ContactOutput{
		ID:           contact.ID.String(),
		Name:         contact.Name,
		Company:      contact.Company,
		Role:         contact.Role,
		Email:        contact.Email,
		ProfileURL:   contact.ProfileURL,
		Notes:        contact.Notes,
		Relationship: string(contact.Relationship),
		Frequency:    contact.Frequency.String(),
		AutoSync:     contact.AutoSync,
		SyncStatus:   string(contact.SyncStatus),
		CreatedAt:    formatTime(contact.CreatedAt),
		UpdatedAt:    formatTime(contact.UpdatedAt),
	}

	if contact.LastContactedAt != nil {
		lca := formatTime(*contact.LastContactedAt)
		output.LastContactedAt = &lca
	}

	return output
}

func statusToOutput(s models.ContactStatus) ContactOutput {
	out := contactToOutput(&s.Contact)
	out.DueStatus = string(s.DueStatus)
	out.DaysSince = s.DaysSince
	return out
}
