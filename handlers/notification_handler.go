package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"habitLogAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var body struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request body, 'token' is required")
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, body.Token, body.Platform); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "device registered"})
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.notificationService.RecentNotifications(ctx, limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*services.NotificationEntry{}
	}

	respondWithJSON(w, http.StatusOK, entries)
}
