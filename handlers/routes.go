package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"pickem-app/middleware"
)

// Router groups the handlers mounted under /api
type Router struct {
	Games     *GameHandler
	Picks     *PickManagementHandler
	Auth      *AuthHandler
	Dashboard *DashboardHandler
	AuthMW    *middleware.AuthMiddleware
}

// NewRouter builds the JSON API routes
func NewRouter(rt Router) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such route", "")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	})

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", rt.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", rt.Auth.Logout).Methods(http.MethodPost)
	api.HandleFunc("/games", rt.Games.ListGames).Methods(http.MethodGet)
	api.HandleFunc("/games/{id:[0-9]+}", rt.Games.GetGame).Methods(http.MethodGet)
	api.HandleFunc("/games/{id:[0-9]+}/spreads", rt.Games.GetSpreads).Methods(http.MethodGet)
	api.HandleFunc("/weeks/{week:[0-9]+}/games", rt.Games.WeekGames).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", rt.Dashboard.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}", rt.Dashboard.Profile).Methods(http.MethodGet)

	// Authenticated routes
	private := api.NewRoute().Subrouter()
	private.Use(rt.AuthMW.RequireAuth)
	private.HandleFunc("/me", rt.Auth.Me).Methods(http.MethodGet)
	private.HandleFunc("/me/display-name", rt.Auth.SetDisplayName).Methods(http.MethodPut)
	private.HandleFunc("/picks", rt.Picks.ListPicks).Methods(http.MethodGet)
	private.HandleFunc("/picks", rt.Picks.SubmitPick).Methods(http.MethodPost)
	private.HandleFunc("/picks/upset", rt.Picks.SubmitUpsetPick).Methods(http.MethodPost)
	private.HandleFunc("/picks/locked-teams", rt.Picks.LockedTeams).Methods(http.MethodGet)
	private.HandleFunc("/picks/{game_id:[0-9]+}", rt.Picks.RemovePick).Methods(http.MethodDelete)

	return r
}
