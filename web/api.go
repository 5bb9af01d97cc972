// ABOUTME: HTTP handlers for contacts, interactions, suggestions and sync
// ABOUTME: Request bodies use pointer fields so absent keys leave values unchanged
package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/followup"
	"github.com/harperreed/rolodex/models"
	"github.com/harperreed/rolodex/sync"
)

const defaultActivityLimit = 20

type contactRequest struct {
	Name         *string `json:"name"`
	Company      *string `json:"company"`
	Role         *string `json:"role"`
	Email        *string `json:"email"`
	ProfileURL   *string `json:"profile_url"`
	Notes        *string `json:"notes"`
	Relationship *string `json:"relationship"`
	Frequency    *string `json:"frequency"`
	AutoSync     *bool   `json:"auto_sync"`
}

// apply copies the present fields onto c.
func (req contactRequest) apply(c *models.Contact) error {
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Company != nil {
		c.Company = *req.Company
	}
	if req.Role != nil {
		c.Role = *req.Role
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.ProfileURL != nil {
		c.ProfileURL = *req.ProfileURL
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	if req.Relationship != nil {
		c.Relationship = models.RelationshipType(*req.Relationship)
	}
	if req.Frequency != nil {
		freq, err := models.ParseFrequency(*req.Frequency)
		if err != nil {
			return err
		}
		c.Frequency = freq
	}
	if req.AutoSync != nil {
		c.AutoSync = *req.AutoSync
	}
	return nil
}

type contactListResponse struct {
	Contacts []models.ContactStatus `json:"contacts"`
	Counts   followup.Counts        `json:"counts"`
}

type contactDetailResponse struct {
	models.ContactStatus
	Interactions []models.Interaction `json:"interactions"`
	Pending      []models.Suggestion  `json:"pending_suggestions"`
}

type interactionRequest struct {
	Kind      string     `json:"kind"`
	Timestamp *time.Time `json:"timestamp"`
	Notes     string     `json:"notes"`
}

type suggestionEditRequest struct {
	Kind      *string    `json:"kind"`
	Timestamp *time.Time `json:"timestamp"`
	Notes     *string    `json:"notes"`
}

type lookupRequest struct {
	ProfileURL string `json:"profile_url"`
}

type syncStatusResponse struct {
	Enabled  bool                     `json:"enabled"`
	Last     *sync.CycleResult        `json:"last,omitempty"`
	LastErr  string                   `json:"last_error,omitempty"`
	Contacts []sync.ContactSyncStatus `json:"contacts"`
}

type syncResponse struct {
	sync.CycleResult
	Error   string `json:"error,omitempty"`
	Summary string `json:"summary"`
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	view, err := followup.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	statuses, counts, err := s.svc.Dashboard(r.Context(), view)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q"))); q != "" {
		filtered := statuses[:0:0]
		for _, cs := range statuses {
			if strings.Contains(strings.ToLower(cs.Contact.Name), q) || strings.Contains(strings.ToLower(cs.Contact.Company), q) {
				filtered = append(filtered, cs)
			}
		}
		statuses = filtered
	}
	if statuses == nil {
		statuses = []models.ContactStatus{}
	}
	writeJSON(w, http.StatusOK, contactListResponse{Contacts: statuses, Counts: counts})
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contact := &models.Contact{}
	if err := req.apply(contact); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.CreateContact(r.Context(), contact); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	status, err := s.svc.ContactStatus(ctx, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	history, err := s.svc.History(ctx, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	pending, err := s.svc.SuggestionsForContact(ctx, id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if history == nil {
		history = []models.Interaction{}
	}
	if pending == nil {
		pending = []models.Suggestion{}
	}
	writeJSON(w, http.StatusOK, contactDetailResponse{ContactStatus: *status, Interactions: history, Pending: pending})
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req contactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contact, err := s.svc.GetContact(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if err := req.apply(contact); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.UpdateContact(r.Context(), contact); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.svc.GetContact(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	if err := s.svc.DeleteContact(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContactInteractions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.svc.GetContact(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	history, err := s.svc.History(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if history == nil {
		history = []models.Interaction{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleLogInteraction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req interactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := &models.Interaction{
		ContactID: id,
		Kind:      models.InteractionKind(strings.ToLower(strings.TrimSpace(req.Kind))),
		Notes:     req.Notes,
	}
	if req.Timestamp != nil {
		in.Timestamp = req.Timestamp.UTC()
	}
	if err := s.svc.LogInteraction(r.Context(), in); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) handleRecentInteractions(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	recent, err := s.svc.RecentInteractions(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if recent == nil {
		recent = []models.Interaction{}
	}
	writeJSON(w, http.StatusOK, recent)
}

func (s *Server) handleDeleteInteraction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteInteraction(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	pending, err := s.svc.PendingSuggestions(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if pending == nil {
		pending = []models.Suggestion{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleEditSuggestion(w http.ResponseWriter, r *http.Request) {
	var req suggestionEditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	edit := crm.SuggestionEdit{Timestamp: req.Timestamp, Notes: req.Notes}
	if req.Kind != nil {
		kind := models.InteractionKind(strings.ToLower(strings.TrimSpace(*req.Kind)))
		edit.Kind = &kind
	}
	ok, err := s.svc.EditSuggestion(r.Context(), mux.Vars(r)["id"], edit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no pending suggestion with that id")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	in, err := s.svc.AcceptSuggestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if in == nil {
		writeError(w, http.StatusNotFound, "no pending suggestion with that id")
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) handleDismissSuggestion(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DismissSuggestion(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.orch == nil {
		writeError(w, http.StatusServiceUnavailable, "interaction detection is disabled")
		return
	}
	res := s.orch.RunCycle(r.Context(), sync.TriggerManual)
	out := syncResponse{CycleResult: res, Summary: res.String()}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if s.orch == nil {
		writeJSON(w, http.StatusOK, syncStatusResponse{Contacts: []sync.ContactSyncStatus{}})
		return
	}
	rows, err := s.orch.Status(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out := syncStatusResponse{Enabled: true, Last: s.orch.LastResult(), Contacts: rows}
	if out.Last != nil && out.Last.Err != nil {
		out.LastErr = out.Last.Err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProfileLookup(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		writeError(w, http.StatusServiceUnavailable, sync.ErrProfileLookupDisabled.Error())
		return
	}
	var req lookupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := s.lookup.Lookup(r.Context(), req.ProfileURL)
	switch {
	case errors.Is(err, sync.ErrProfileURLRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sync.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, sync.ErrProfileLookupDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		s.logger.Error("profile lookup failed", "err", err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, profile)
	}
}
