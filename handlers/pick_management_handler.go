package handlers

import (
	"net/http"
	"strconv"

	"pickem-app/interfaces"
	"pickem-app/middleware"
	"pickem-app/models"
)

// PickManagementHandler handles pick submission and removal for the
// authenticated user
type PickManagementHandler struct {
	pickService interfaces.PickService
}

// NewPickManagementHandler creates a new pick management handler
func NewPickManagementHandler(pickService interfaces.PickService) *PickManagementHandler {
	return &PickManagementHandler{pickService: pickService}
}

type submitPickRequest struct {
	GameID int     `json:"game_id" validate:"required,gt=0"`
	Team   string  `json:"team" validate:"required"`
	Kind   string  `json:"kind" validate:"required"`
	Points float64 `json:"points"`
}

type upsetPickRequest struct {
	GameID int    `json:"game_id" validate:"required,gt=0"`
	Team   string `json:"team" validate:"required"`
}

// ListPicks handles GET /api/picks, optionally filtered with ?week=N
func (h *PickManagementHandler) ListPicks(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var (
		picks []*models.Pick
		err   error
	)
	if raw := r.URL.Query().Get("week"); raw != "" {
		week, convErr := strconv.Atoi(raw)
		if convErr != nil || week < 1 || week > models.RegularSeasonWeeks {
			writeError(w, http.StatusBadRequest, "week must be between 1 and 18", "")
			return
		}
		picks, err = h.pickService.UserPicksForWeek(r.Context(), user.UserID, week)
	} else {
		picks, err = h.pickService.UserPicks(r.Context(), user.UserID)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilPicks(picks))
}

// SubmitPick handles POST /api/picks
func (h *PickManagementHandler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req submitPickRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pick, err := h.pickService.SubmitPick(r.Context(), user.UserID, req.GameID, req.Team, models.PickKind(req.Kind), req.Points)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pick)
}

// SubmitUpsetPick handles POST /api/picks/upset; points come from the
// current spread
func (h *PickManagementHandler) SubmitUpsetPick(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req upsetPickRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pick, err := h.pickService.SubmitUpsetPick(r.Context(), user.UserID, req.GameID, req.Team)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pick)
}

// RemovePick handles DELETE /api/picks/{game_id}
func (h *PickManagementHandler) RemovePick(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	gameID, err := intVar(r, "game_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.pickService.RemovePick(r.Context(), user.UserID, gameID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LockedTeams handles GET /api/picks/locked-teams
func (h *PickManagementHandler) LockedTeams(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	teams, err := h.pickService.LockedTeams(r.Context(), user.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sortedTeams(teams))
}
