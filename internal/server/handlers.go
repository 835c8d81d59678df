package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/grbod/shipdash/internal/aggregator"
	"github.com/grbod/shipdash/internal/domain"
)

// Handler serves the unified result to the presentation consumer.
type Handler struct {
	agg      *aggregator.Service
	logger   *slog.Logger
	daysBack int
}

// NewHandler creates the API handler over the aggregation service. daysBack
// is the configured fetch window applied when a request does not name one.
func NewHandler(agg *aggregator.Service, daysBack int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{agg: agg, logger: logger, daysBack: daysBack}
}

// Unified handles GET /api/v1/shipments: the unified result assembled from
// cached or freshly fetched provider data.
func (h *Handler) Unified(w http.ResponseWriter, r *http.Request) {
	q, err := h.queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.agg.Unified(r.Context(), q))
}

// Refresh handles POST /api/v1/refresh: the manual refresh action, which
// bypasses the cache TTL and returns the refreshed unified result.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	q, err := h.queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	q.ForceRefresh = true
	writeJSON(w, http.StatusOK, h.agg.Unified(r.Context(), q))
}

// Notifier handles GET /api/v1/notifier: the reduced shipment view consumed
// by the legacy notification pipeline.
func (h *Handler) Notifier(w http.ResponseWriter, r *http.Request) {
	q, err := h.queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	result := h.agg.Unified(r.Context(), q)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shipments":           domain.NotifierView(result.Shipments),
		"per_provider_status": result.PerProvider,
	})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) queryFromRequest(r *http.Request) (domain.Query, error) {
	q := domain.Query{DaysBack: h.daysBack}
	if v := r.URL.Query().Get("days_back"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return q, errors.New("days_back must be a non-negative integer")
		}
		q.DaysBack = days
	}
	q.Statuses = r.URL.Query()["status"]
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"type":    errType,
			"message": message,
		},
	})
}
