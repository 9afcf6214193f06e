package gamification

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/studycore/backend/internal/models"
)

// Handler is the thin HTTP facade over the engine. Route ownership,
// authentication, and sessions belong to the surrounding application; the
// handler only translates requests and degrades gracefully when the engine
// reports a store failure, because gamification must never block the action
// that triggered it.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// LogActivity handles POST /activity.
func (h *Handler) LogActivity(w http.ResponseWriter, r *http.Request) {
	var req models.LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.LogActivity(r.Context(), req, time.Now())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, result)
	case errors.Is(err, ErrInvalid):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Concurrent update, please retry"})
	default:
		// Store failure: serve the zeroed result so the caller's primary
		// action is not blocked by gamification bookkeeping.
		writeJSON(w, http.StatusOK, result)
	}
}

// GetUserStats handles GET /users/{id}/stats.
func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]
	email := r.URL.Query().Get("email")
	courseID := r.URL.Query().Get("course_id")

	stats, err := h.service.GetOrCreateUserStats(r.Context(), userID, email, courseID)
	if err != nil && errors.Is(err, ErrInvalid) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	// On store failure stats is the safe default; serve it.
	writeJSON(w, http.StatusOK, stats)
}

// GetUserBadges handles GET /users/{id}/badges.
func (h *Handler) GetUserBadges(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	resp, _ := h.service.GetUserBadges(r.Context(), userID)
	writeJSON(w, http.StatusOK, resp)
}

// SeedBadges handles POST /admin/badges/seed.
func (h *Handler) SeedBadges(w http.ResponseWriter, r *http.Request) {
	var req models.SeedBadgesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if len(req.Badges) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "badges is required"})
		return
	}

	count, err := h.service.SeedBadgeDefinitions(r.Context(), req.Badges)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalid) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.SeedBadgesResponse{CountWritten: count})
}

// RunMaintenance handles POST /admin/maintenance/run, for the external
// scheduler.
func (h *Handler) RunMaintenance(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RunDailyMaintenance(r.Context(), time.Now())
	if err != nil {
		// Partial reports are still useful; include what completed.
		writeJSON(w, http.StatusInternalServerError, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// UpdateXPConfig handles PUT /admin/xp-config.
func (h *Handler) UpdateXPConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.XPConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.UpdateXPConfig(r.Context(), cfg); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalid) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
