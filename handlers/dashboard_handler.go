package handlers

import (
	"context"
	"net/http"
	"time"

	"habitLogAPI/internal/aggregate"
	"habitLogAPI/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
	recordService    *services.RecordService
}

func NewDashboardHandler(dashboardService *services.DashboardService, recordService *services.RecordService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		recordService:    recordService,
	}
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := h.dashboardService.View(ctx, time.Now())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	if err := h.dashboardService.Refresh(ctx, now); err != nil {
		respondWithServiceError(w, err)
		return
	}

	view, err := h.dashboardService.View(ctx, now)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *DashboardHandler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := h.recordService.ListRecords(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, aggregate.Streaks(records, time.Now()))
}

func (h *DashboardHandler) GetWeekSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := h.recordService.ListRecords(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, aggregate.WeekSummary(records, time.Now()))
}

func (h *DashboardHandler) GetMonthSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := h.recordService.ListRecords(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, aggregate.MonthSummary(records, time.Now()))
}
