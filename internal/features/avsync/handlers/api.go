package handlers

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"avsync-monitor/internal/features/avsync/models"

	"github.com/go-chi/chi/v5"
)

type APIHandler struct {
	logger *slog.Logger
	server MonitorInterface
}

func NewAPIHandler(logger *slog.Logger, server MonitorInterface) *APIHandler {
	return &APIHandler{
		logger: logger,
		server: server,
	}
}

// ListSites returns all registered sites with their current snapshots
func (h *APIHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.server.GetActiveSites()
	if err != nil {
		h.logger.Error("Failed to get active sites", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	statuses := make([]models.SiteStatus, len(sites))
	for i, site := range sites {
		status := models.SiteStatus{Site: site}
		if snapshot, ok := h.server.Snapshot(site.ID); ok {
			status.Snapshot = snapshot
		}
		statuses[i] = status
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"sites": statuses})
}

// GetSite returns one site with its current snapshot
func (h *APIHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "id")

	site, err := h.server.GetSiteByID(siteID)
	if err != nil {
		h.logger.Error("Failed to get site by ID", "site_id", siteID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if site == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	status := models.SiteStatus{Site: *site}
	if snapshot, ok := h.server.Snapshot(site.ID); ok {
		status.Snapshot = snapshot
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"site": status})
}

// PollSite triggers an immediate poll of one site and returns the updated
// snapshot
func (h *APIHandler) PollSite(w http.ResponseWriter, r *http.Request) {
	siteID := chi.URLParam(r, "id")

	site, err := h.server.GetSiteByID(siteID)
	if err != nil {
		h.logger.Error("Failed to get site by ID", "site_id", siteID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if site == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	snapshot, err := h.server.PollSiteByID(r.Context(), siteID)
	if err != nil {
		h.logger.Error("Failed to poll site", "site_id", siteID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"site_id": siteID, "snapshot": snapshot})
}
