package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"pickem-app/interfaces"
)

// DashboardHandler serves the leaderboard and public profiles
type DashboardHandler struct {
	scoring interfaces.LeaderboardService
	users   interfaces.UserService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(scoring interfaces.LeaderboardService, users interfaces.UserService) *DashboardHandler {
	return &DashboardHandler{
		scoring: scoring,
		users:   users,
	}
}

// Leaderboard handles GET /api/leaderboard
func (h *DashboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scoring.Leaderboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Profile handles GET /api/users/{username}
func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Profile(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
