package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem-app/database/memory"
	"pickem-app/middleware"
	"pickem-app/models"
	"pickem-app/services"
)

var schedule = []services.ScheduleRow{
	{GameID: 1, Kickoff: "2024-09-08T17:00:00", HomeTeam: "Kansas City Chiefs", AwayTeam: "Baltimore Ravens"},
	{GameID: 2, Kickoff: "2024-09-08T18:00:00", HomeTeam: "Buffalo Bills", AwayTeam: "Miami Dolphins"},
	{GameID: 5, Kickoff: "2024-09-15T17:00:00", HomeTeam: "Kansas City Chiefs", AwayTeam: "Cincinnati Bengals"},
	{GameID: 6, Kickoff: "2024-09-15T17:00:00", HomeTeam: "Baltimore Ravens", AwayTeam: "Las Vegas Raiders"},
}

const handoffSecret = "handler-handoff-secret"

var fixtureNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

type apiFixture struct {
	server  http.Handler
	spreads *memory.SpreadRepository
	token   string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return fixtureNow }

	games := memory.NewGameRepository()
	picks := memory.NewPickRepository()
	users := memory.NewUserRepository()
	spreadRepo := memory.NewSpreadRepository()

	scheduleService := services.NewScheduleService(games)
	_, err := scheduleService.LoadInitial(ctx, schedule)
	require.NoError(t, err)

	spreadService := services.NewSpreadService(spreadRepo, games)
	pickService := services.NewPickService(picks, scheduleService, spreadService, nil)
	pickService.SetClock(now)
	scoringService := services.NewScoringService(picks, users, scheduleService, nil)
	userService := services.NewUserService(users, picks, scoringService)
	authService := services.NewAuthService(users, "handler-test-secret", handoffSecret, time.Hour)
	authService.SetClock(now)

	login, err := authService.CompleteLogin(ctx, models.Identity{Subject: "google|7", Name: "Pat Example", Username: "pat"})
	require.NoError(t, err)

	router := NewRouter(Router{
		Games:     NewGameHandler(scheduleService, spreadService),
		Picks:     NewPickManagementHandler(pickService),
		Auth:      NewAuthHandler(authService, userService, false),
		Dashboard: NewDashboardHandler(scoringService, userService),
		AuthMW:    middleware.NewAuthMiddleware(authService),
	})

	return &apiFixture{server: router, spreads: spreadRepo, token: login.Token}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	token := ""
	if authed {
		token = f.token
	}
	return f.doWithToken(t, method, path, body, token)
}

func (f *apiFixture) doWithToken(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func signedLogin(t *testing.T, secret string, identity models.Identity) string {
	t.Helper()
	assertion, err := services.SignIdentityAssertion(secret, identity, fixtureNow, time.Minute)
	require.NoError(t, err)
	body, err := sonic.Marshal(map[string]string{"assertion": assertion})
	require.NoError(t, err)
	return string(body)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestGamesEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/games", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Game](t, rec), 4)

	rec = f.do(t, http.MethodGet, "/api/weeks/2/games", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Game](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/api/games?week=1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Game](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/api/games/2", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Miami Dolphins", decode[models.Game](t, rec).AwayTeam)

	rec = f.do(t, http.MethodGet, "/api/games/999", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/weeks/19/games", "", false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPickLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/picks", `{"game_id":1,"team":"Kansas City Chiefs","kind":"lock"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pick := decode[models.Pick](t, rec)
	assert.Equal(t, models.LockPoints, pick.Points)
	assert.Equal(t, "google|7", pick.UserID)

	rec = f.do(t, http.MethodPost, "/api/picks", `{"game_id":5,"team":"Kansas City Chiefs","kind":"lock"}`, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, services.RuleDuplicateLock, decode[errorResponse](t, rec).Rule)

	rec = f.do(t, http.MethodGet, "/api/picks/locked-teams", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Kansas City Chiefs"}, decode[[]string](t, rec))

	rec = f.do(t, http.MethodGet, "/api/picks?week=1", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Pick](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/picks?week=2", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/api/picks/1", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/picks", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Pick](t, rec))
}

func TestSubmitPick_BadRequests(t *testing.T) {
	f := newAPIFixture(t)

	cases := []struct {
		name   string
		body   string
		status int
		rule   string
	}{
		{name: "malformed json", body: `{"game_id":`, status: http.StatusBadRequest},
		{name: "missing team", body: `{"game_id":1,"kind":"lock"}`, status: http.StatusUnprocessableEntity, rule: services.RuleInvalidInput},
		{name: "unknown kind", body: `{"game_id":1,"team":"Kansas City Chiefs","kind":"parlay"}`, status: http.StatusUnprocessableEntity, rule: services.RuleInvalidKind},
		{name: "team not playing", body: `{"game_id":1,"team":"Buffalo Bills","kind":"lock"}`, status: http.StatusUnprocessableEntity, rule: services.RuleInvalidTeam},
		{name: "unknown game", body: `{"game_id":42,"team":"Buffalo Bills","kind":"lock"}`, status: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/picks", tc.body, true)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.rule != "" {
				assert.Equal(t, tc.rule, decode[errorResponse](t, rec).Rule)
			}
		})
	}
}

func TestUpsetPickUsesCurrentSpread(t *testing.T) {
	f := newAPIFixture(t)
	stamp := time.Date(2024, 9, 5, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.spreads.InsertMany(context.Background(), []*models.Spread{
		{GameID: 2, Bookmaker: "draftkings", Team: "Miami Dolphins", Point: 3.5, Price: -110, Timestamp: stamp},
		{GameID: 2, Bookmaker: "draftkings", Team: "Buffalo Bills", Point: -3.5, Price: -110, Timestamp: stamp},
	}))

	rec := f.do(t, http.MethodPost, "/api/picks/upset", `{"game_id":2,"team":"Miami Dolphins"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pick := decode[models.Pick](t, rec)
	assert.Equal(t, models.PickKindUpset, pick.Kind)
	assert.Equal(t, 3.5, pick.Points)

	rec = f.do(t, http.MethodPost, "/api/picks/upset", `{"game_id":2,"team":"Buffalo Bills"}`, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, services.RuleNotUnderdog, decode[errorResponse](t, rec).Rule)

	rec = f.do(t, http.MethodGet, "/api/games/2/spreads", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	spreads := decode[gameSpreads](t, rec)
	assert.Len(t, spreads.History, 2)
	assert.Equal(t, 3.5, spreads.Current["Miami Dolphins"].Point)
}

func TestAuthenticationRequired(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/api/picks", "/api/picks/locked-teams", "/api/me"} {
		rec := f.do(t, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestLoginAndProfile(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login", signedLogin(t, handoffSecret, models.Identity{Subject: "google|8", Name: "Sam", Username: "sam"}), false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[services.LoginResult](t, rec).Token)
	assert.NotEmpty(t, rec.Result().Cookies())

	rec = f.do(t, http.MethodPost, "/api/auth/login", signedLogin(t, handoffSecret, models.Identity{Subject: "google|9", Name: "Nobody"}), false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/login", signedLogin(t, handoffSecret, models.Identity{Subject: "google|9", Name: "Pat Two", Username: "pat"}), false)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, services.RuleInvalidInput, decode[errorResponse](t, rec).Rule)

	rec = f.do(t, http.MethodPut, "/api/me/display-name", `{"display_name":"  The Oracle  "}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "The Oracle", decode[models.User](t, rec).DisplayName)

	rec = f.do(t, http.MethodGet, "/api/leaderboard", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[[]models.LeaderboardEntry](t, rec)
	require.Len(t, board, 2)
	assert.Equal(t, "The Oracle", board[0].DisplayName)

	rec = f.do(t, http.MethodGet, "/api/users/pat", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[models.Profile](t, rec)
	assert.Equal(t, "google|7", profile.User.UserID)
	assert.Empty(t, profile.Picks)

	rec = f.do(t, http.MethodGet, "/api/users/ghost", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginRefusesUnverifiedIdentity(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/picks", `{"game_id":1,"team":"Kansas City Chiefs","kind":"lock"}`, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	victim := models.Identity{Subject: "google|7", Name: "Pat Example", Username: "pat"}
	forgeries := map[string]string{
		"bare identity":      `{"sub":"google|7","name":"Pat Example","username":"pat"}`,
		"empty assertion":    `{"assertion":""}`,
		"unsigned assertion": `{"assertion":"eyJhbGciOiJub25lIn0.eyJzdWIiOiJnb29nbGV8NyJ9."}`,
		"wrong secret":       signedLogin(t, "guessed-secret", victim),
		"session token":      `{"assertion":"` + f.token + `"}`,
	}
	for name, body := range forgeries {
		t.Run(name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/auth/login", body, false)
			require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
			assert.Empty(t, rec.Result().Cookies())

			rec = f.doWithToken(t, http.MethodDelete, "/api/picks/1", "", "not-a-session")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	rec = f.do(t, http.MethodGet, "/api/picks", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Pick](t, rec), 1)
}

func TestUnknownRoute(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/api/nope", "", false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no such route", decode[errorResponse](t, rec).Error)
}
