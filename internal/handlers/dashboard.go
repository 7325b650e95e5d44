// Package handlers provides HTTP handlers for API endpoints
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pocketbase/pocketbase/tools/routine"
	"go.uber.org/zap"

	"epol-dashboard/internal/models"
)

// StatsReader exposes the latest published snapshot
type StatsReader interface {
	Snapshot() *models.DashboardStats
}

// Refresher reloads every provider from the backend
type Refresher interface {
	RefreshAll(ctx context.Context)
}

// DashboardHandler serves the dashboard snapshot over HTTP
type DashboardHandler struct {
	ctx       context.Context // outlives requests; refreshes run on it
	stats     StatsReader
	refresher Refresher
	log       *zap.SugaredLogger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(ctx context.Context, stats StatsReader, refresher Refresher, log *zap.SugaredLogger) *DashboardHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DashboardHandler{ctx: ctx, stats: stats, refresher: refresher, log: log}
}

// Routes registers the handler's endpoints on mux
func (h *DashboardHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/dashboard/stats", h.HandleStats)
	mux.HandleFunc("/api/dashboard/refresh", h.HandleRefresh)
	mux.HandleFunc("/health", HandleHealth)
}

// HandleStats returns the current snapshot as JSON
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.stats.Snapshot()
	if snap == nil {
		http.Error(w, "Statistics not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		h.log.Warnw("failed to write stats response", "error", err)
	}
}

// HandleRefresh starts a full refresh and returns without waiting for it
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.log.Infow("refresh requested", "remote", r.RemoteAddr)
	routine.FireAndForget(func() {
		h.refresher.RefreshAll(h.ctx)
	})

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("Accepted"))
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
