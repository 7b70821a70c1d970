package handlers

import (
	"net/http"
	"strconv"

	"pickem-app/interfaces"
	"pickem-app/models"
)

// GameHandler serves the schedule and odds
type GameHandler struct {
	schedule interfaces.GameService
	spreads  interfaces.OddsService
}

// NewGameHandler creates a new game handler
func NewGameHandler(schedule interfaces.GameService, spreads interfaces.OddsService) *GameHandler {
	return &GameHandler{
		schedule: schedule,
		spreads:  spreads,
	}
}

// gameSpreads is the odds view of one game
type gameSpreads struct {
	GameID  int                       `json:"game_id"`
	Current map[string]*models.Spread `json:"current"`
	History []*models.Spread          `json:"history"`
}

// ListGames handles GET /api/games, optionally filtered with ?week=N
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("week"); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "week must be an integer", "")
			return
		}
		h.writeWeek(w, r, week)
		return
	}

	games, err := h.schedule.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilGames(games))
}

// WeekGames handles GET /api/weeks/{week}/games
func (h *GameHandler) WeekGames(w http.ResponseWriter, r *http.Request) {
	week, err := intVar(r, "week")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	h.writeWeek(w, r, week)
}

func (h *GameHandler) writeWeek(w http.ResponseWriter, r *http.Request, week int) {
	games, err := h.schedule.ListByWeek(r.Context(), week)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNilGames(games))
}

// GetGame handles GET /api/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := intVar(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	game, err := h.schedule.Get(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// GetSpreads handles GET /api/games/{id}/spreads
func (h *GameHandler) GetSpreads(w http.ResponseWriter, r *http.Request) {
	gameID, err := intVar(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if _, err := h.schedule.Get(r.Context(), gameID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	current, err := h.spreads.CurrentSpreads(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	history, err := h.spreads.History(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if history == nil {
		history = []*models.Spread{}
	}

	writeJSON(w, http.StatusOK, gameSpreads{GameID: gameID, Current: current, History: history})
}
