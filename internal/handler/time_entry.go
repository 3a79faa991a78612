package handler

import (
	"log/slog"
	"net/http"

	"github.com/timeledger/timeledger/internal/auth"
	"github.com/timeledger/timeledger/internal/calendar"
	"github.com/timeledger/timeledger/internal/handler/dto"
	"github.com/timeledger/timeledger/internal/service"
)

// TimeEntryHandler handles the caller's time entries.
type TimeEntryHandler struct {
	svc    *service.TimeEntryService
	logger *slog.Logger
}

// NewTimeEntryHandler creates a new TimeEntryHandler.
func NewTimeEntryHandler(svc *service.TimeEntryService, logger *slog.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/time-entries.
func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req dto.CreateTimeEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, err := calendar.ParseLocalDateTime(req.StartTime)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_DATE", "Invalid startTime: "+req.StartTime)
		return
	}
	end, err := calendar.ParseLocalDateTime(req.EndTime)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_DATE", "Invalid endTime: "+req.EndTime)
		return
	}

	entry, err := h.svc.CreateForUser(r.Context(), userID, service.CreateTimeEntryInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("time_entry_created",
		"entry_id", entry.ID,
		"project_id", entry.ProjectID,
		"duration_minutes", entry.DurationMinutes,
	)
	writeJSON(w, http.StatusCreated, dto.ToTimeEntryResponse(entry))
}

// List handles GET /api/v1/time-entries.
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	entries, err := h.svc.ListForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	out := make([]dto.TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ToTimeEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /api/v1/time-entries/{id}.
func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteForUser(r.Context(), userID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("time_entry_deleted", "entry_id", id)
	w.WriteHeader(http.StatusNoContent)
}
