// Package httpapi exposes the detection engine over HTTP: event ingest,
// alert queries, enrichment status, and a liveness check, routed with
// github.com/go-chi/chi/v5.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/BrizoSec/privesc-detector/internal/dispatch"
	"github.com/BrizoSec/privesc-detector/internal/enrichment"
	"github.com/BrizoSec/privesc-detector/internal/store"
)

// Pinger reports whether the persistent store is currently reachable —
// satisfied by *pgxpool.Pool. memstore's stores do not implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires the engine's collaborators to chi routes.
type Server struct {
	router      chi.Router
	eventStore  store.EventStore
	alertStore  store.AlertStore
	dispatcher  *dispatch.Dispatcher
	enrichments *enrichment.Manager
	pinger      Pinger
	log         zerolog.Logger
}

// New builds a Server with all routes registered. pinger may be nil, in
// which case GET /health always reports db "unavailable".
func New(eventStore store.EventStore, alertStore store.AlertStore, dispatcher *dispatch.Dispatcher, enrichments *enrichment.Manager, pinger Pinger, log zerolog.Logger) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		eventStore:  eventStore,
		alertStore:  alertStore,
		dispatcher:  dispatcher,
		enrichments: enrichments,
		pinger:      pinger,
		log:         log,
	}
	s.routes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Post("/ingest/event", s.handleIngestEvent)
	s.router.Get("/alerts", s.handleListAlerts)
	s.router.Get("/alerts/{id}", s.handleGetAlert)
	s.router.Patch("/alerts/{id}/acknowledge", s.handleAcknowledgeAlert)
	s.router.Get("/enrichment/status", s.handleEnrichmentStatus)
	s.router.Get("/accounts/{id}", s.handleGetAccount)
	s.router.Get("/hosts/{id}", s.handleGetHost)
	s.router.Get("/health", s.handleHealth)
}

// handleGetAccount serves the richer AccountNode projection (see
// authgraph.BuildNodeProjections), derived from every event on record
// rather than tracked incrementally.
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	events, err := s.eventStore.GetAllForGraph(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load events for account projection")
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}
	accounts, _ := authgraph.BuildNodeProjections(events)
	account, ok := accounts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// handleGetHost serves the richer HostNode projection.
func (s *Server) handleGetHost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	events, err := s.eventStore.GetAllForGraph(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load events for host projection")
		writeError(w, http.StatusInternalServerError, "failed to load host")
		return
	}
	_, hosts := authgraph.BuildNodeProjections(events)
	host, ok := hosts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Host not found")
		return
	}
	writeJSON(w, http.StatusOK, host)
}

type ingestResponse struct {
	EventID     authgraph.EventID `json:"event_id"`
	AlertsFired []authgraph.Alert `json:"alerts_fired"`
}

func (s *Server) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	event, err := authgraph.UnmarshalAuthEvent(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx := r.Context()
	if err := s.eventStore.Insert(ctx, event); err != nil {
		s.log.Error().Err(err).Msg("failed to persist ingested event")
		writeError(w, http.StatusInternalServerError, "failed to persist event")
		return
	}

	allEvents, err := s.eventStore.GetAllForGraph(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load events for graph rebuild")
		writeError(w, http.StatusInternalServerError, "failed to rebuild graph")
		return
	}
	graph := authgraph.BuildGraph(allEvents)

	alerts, err := s.dispatcher.OnEventInserted(ctx, event, graph)
	if err != nil {
		s.log.Error().Err(err).Msg("dispatch failed")
		writeError(w, http.StatusInternalServerError, "failed to run detections")
		return
	}
	if alerts == nil {
		alerts = []authgraph.Alert{}
	}

	writeJSON(w, http.StatusOK, ingestResponse{EventID: event.EventID(), AlertsFired: alerts})
}

const (
	minAlertsLimit     = 1
	maxAlertsLimit     = 500
	defaultAlertsLimit = 50
)

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	skip := parseIntDefault(q.Get("skip"), 0)
	if skip < 0 {
		writeError(w, http.StatusUnprocessableEntity, "skip must be >= 0")
		return
	}
	limit := parseIntDefault(q.Get("limit"), defaultAlertsLimit)
	if limit < minAlertsLimit || limit > maxAlertsLimit {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("limit must be between %d and %d", minAlertsLimit, maxAlertsLimit))
		return
	}

	filter := store.AlertListFilter{
		Skip:          skip,
		Limit:         limit,
		DetectionType: authgraph.DetectionType(q.Get("detection_type")),
	}
	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid since timestamp")
			return
		}
		filter.Since = t
	}

	alerts, err := s.alertStore.List(r.Context(), filter)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list alerts")
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []authgraph.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	alert, err := s.alertStore.GetByID(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get alert")
		writeError(w, http.StatusInternalServerError, "failed to get alert")
		return
	}
	if alert == nil {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := s.alertStore.Acknowledge(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to acknowledge alert")
		writeError(w, http.StatusInternalServerError, "failed to acknowledge alert")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "alert_id": id})
}

type enrichmentStatusResponse struct {
	VaultHostCount       int `json:"vault_host_count"`
	CriticalAccountCount int `json:"critical_account_count"`
}

func (s *Server) handleEnrichmentStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.enrichments.Current()
	if err != nil {
		s.log.Error().Err(err).Msg("enrichment snapshot unavailable")
		writeError(w, http.StatusInternalServerError, "enrichment cache not yet loaded")
		return
	}
	writeJSON(w, http.StatusOK, enrichmentStatusResponse{
		VaultHostCount:       snapshot.Vault.HostCount(),
		CriticalAccountCount: snapshot.CriticalAccounts.AccountCount(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "unavailable"
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err == nil {
			dbStatus = "connected"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": dbStatus})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
