package handlers

import (
	"context"
	"net/http"
	"time"

	"habitLogAPI/internal/guard"
	"habitLogAPI/services"
)

type AdminHandler struct {
	recordService       *services.RecordService
	markerService       *services.MarkerService
	notificationService *services.NotificationService
	dashboardService    *services.DashboardService
	guard               *guard.Guard
}

func NewAdminHandler(
	recordService *services.RecordService,
	markerService *services.MarkerService,
	notificationService *services.NotificationService,
	dashboardService *services.DashboardService,
	g *guard.Guard,
) *AdminHandler {
	return &AdminHandler{
		recordService:       recordService,
		markerService:       markerService,
		notificationService: notificationService,
		dashboardService:    dashboardService,
		guard:               g,
	}
}

// Initialize creates all tables when absent and ensures today's row exists.
// Idempotent: re-running against an initialized store is a no-op. Unlike the
// background actions this reports success or failure explicitly.
func (h *AdminHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.recordService.EnsureSchema(ctx); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to initialize record store: "+err.Error())
		return
	}
	if err := h.markerService.EnsureSchema(ctx); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to initialize marker store: "+err.Error())
		return
	}
	if err := h.notificationService.EnsureSchema(ctx); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to initialize notification store: "+err.Error())
		return
	}
	if err := h.dashboardService.EnsureSchema(ctx); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to initialize dashboard store: "+err.Error())
		return
	}

	if err := h.guard.EnsureTodayRecord(ctx, time.Now()); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to ensure today's record: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "initialized"})
}
