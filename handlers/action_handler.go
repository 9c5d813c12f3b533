package handlers

import (
	"context"
	"net/http"
	"time"

	"habitLogAPI/internal/guard"
)

// ActionHandler exposes the guarded actions for manual triggering. The same
// lock and marker discipline applies, so hitting these repeatedly is safe.
type ActionHandler struct {
	guard *guard.Guard
}

func NewActionHandler(g *guard.Guard) *ActionHandler {
	return &ActionHandler{guard: g}
}

// Guarded actions wait up to 10s on the lock; give the handler headroom.
const actionTimeout = 15 * time.Second

func (h *ActionHandler) EnsureTodayRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	if err := h.guard.EnsureTodayRecord(ctx, time.Now()); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "today's record ensured"})
}

func (h *ActionHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	if err := h.guard.MaybeSendReminder(ctx, time.Now()); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "reminder processed"})
}

func (h *ActionHandler) SendWeeklySummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	if err := h.guard.SendWeeklySummary(ctx, time.Now()); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "weekly summary processed"})
}
