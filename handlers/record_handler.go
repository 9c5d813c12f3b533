package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"habitLogAPI/internal/caldate"
	"habitLogAPI/internal/types/record"
	"habitLogAPI/services"
)

type RecordHandler struct {
	recordService *services.RecordService
}

func NewRecordHandler(recordService *services.RecordService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
	}
}

func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := h.recordService.ListRecords(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if records == nil {
		records = []*record.DailyRecord{}
	}

	respondWithJSON(w, http.StatusOK, records)
}

func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	date, err := caldate.Parse(mux.Vars(r)["date"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	rec, err := h.recordService.GetByDate(ctx, date)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if rec == nil {
		respondWithError(w, http.StatusNotFound, "No record for "+date.String())
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

// UpsertRecord is the manual-entry path: it overwrites fields of the row for
// the given date in place, creating the row when absent.
func (h *RecordHandler) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	date, err := caldate.Parse(mux.Vars(r)["date"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}
	if date.After(caldate.FromTime(time.Now())) {
		respondWithError(w, http.StatusBadRequest, "Cannot log a future date")
		return
	}

	var req record.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.recordService.UpsertRecord(ctx, date, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}
