// ABOUTME: JSON HTTP API over the relationship manager service
// ABOUTME: gorilla/mux routing, CORS for browser clients, rate limits on sync and lookup
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/harperreed/rolodex/crm"
	"github.com/harperreed/rolodex/sync"
)

const maxBodyBytes = 1 << 20

// ProfileLookup resolves a profile URL into pre-fill data.
type ProfileLookup interface {
	Lookup(ctx context.Context, profileURL string) (*sync.Profile, error)
}

// Options tune the server. Zero values fall back to defaults.
type Options struct {
	// SyncEvery is the minimum spacing of manual sync requests per client.
	SyncEvery time.Duration
	SyncBurst int
	// LookupEvery is the minimum spacing of profile lookups per client.
	LookupEvery time.Duration
	LookupBurst int
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

func (o Options) withDefaults() Options {
	if o.SyncEvery <= 0 {
		o.SyncEvery = 30 * time.Second
	}
	if o.SyncBurst <= 0 {
		o.SyncBurst = 2
	}
	if o.LookupEvery <= 0 {
		o.LookupEvery = 2 * time.Second
	}
	if o.LookupBurst <= 0 {
		o.LookupBurst = 5
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	return o
}

type Server struct {
	svc    *crm.Service
	orch   *sync.Orchestrator
	lookup ProfileLookup
	logger *log.Logger
	opts   Options

	syncLimiter   *RateLimiter
	lookupLimiter *RateLimiter
}

// NewServer builds the API server. orch and lookup may be nil; their
// endpoints then answer 503.
func NewServer(svc *crm.Service, orch *sync.Orchestrator, lookup ProfileLookup, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	opts = opts.withDefaults()
	return &Server{
		svc:           svc,
		orch:          orch,
		lookup:        lookup,
		logger:        logger,
		opts:          opts,
		syncLimiter:   NewRateLimiter(opts.SyncEvery, opts.SyncBurst),
		lookupLimiter: NewRateLimiter(opts.LookupEvery, opts.LookupBurst),
	}
}

// Handler returns the routed API wrapped in CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.logRequests)

	api.HandleFunc("/contacts", s.handleListContacts).Methods(http.MethodGet)
	api.HandleFunc("/contacts", s.handleCreateContact).Methods(http.MethodPost)
	api.HandleFunc("/contacts/{id}", s.handleGetContact).Methods(http.MethodGet)
	api.HandleFunc("/contacts/{id}", s.handleUpdateContact).Methods(http.MethodPut)
	api.HandleFunc("/contacts/{id}", s.handleDeleteContact).Methods(http.MethodDelete)
	api.HandleFunc("/contacts/{id}/interactions", s.handleContactInteractions).Methods(http.MethodGet)
	api.HandleFunc("/contacts/{id}/interactions", s.handleLogInteraction).Methods(http.MethodPost)

	api.HandleFunc("/interactions", s.handleRecentInteractions).Methods(http.MethodGet)
	api.HandleFunc("/interactions/{id}", s.handleDeleteInteraction).Methods(http.MethodDelete)

	api.HandleFunc("/suggestions", s.handleListSuggestions).Methods(http.MethodGet)
	api.HandleFunc("/suggestions/{id}", s.handleEditSuggestion).Methods(http.MethodPatch)
	api.HandleFunc("/suggestions/{id}/accept", s.handleAcceptSuggestion).Methods(http.MethodPost)
	api.HandleFunc("/suggestions/{id}/dismiss", s.handleDismissSuggestion).Methods(http.MethodPost)

	api.Handle("/sync", s.syncLimiter.Middleware(http.HandlerFunc(s.handleSync))).Methods(http.MethodPost)
	api.HandleFunc("/sync/status", s.handleSyncStatus).Methods(http.MethodGet)
	api.Handle("/profile/lookup", s.lookupLimiter.Middleware(http.HandlerFunc(s.handleProfileLookup))).Methods(http.MethodPost)

	return cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey"},
	}).Handler(r)
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", "http://localhost"+srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("stopping web server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, crm.ErrContactNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, crm.ErrAmbiguousContact):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, crm.ErrInvalidContact),
		errors.Is(err, crm.ErrInvalidInteraction),
		errors.Is(err, crm.ErrInvalidSuggestion):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
