package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem-app/database/memory"
	"pickem-app/models"
)

func TestAuthService_CompleteLogin(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	auth := NewAuthService(users, "test-secret", "handoff-secret", time.Hour)
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }

	result, err := auth.CompleteLogin(ctx, models.Identity{Subject: "gh|42", Name: "Jordan", Username: "jordan"})
	require.NoError(t, err)
	assert.Equal(t, "gh|42", result.User.UserID)
	assert.NotEmpty(t, result.Token)

	claims, err := auth.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "gh|42", claims.UserID)
	assert.Equal(t, "jordan", claims.Username)

	user, err := auth.GetUserFromToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "Jordan", user.Name)
	assert.True(t, user.LastLoginAt.Equal(now))

	t.Run("second login refreshes the user", func(t *testing.T) {
		later := now.Add(48 * time.Hour)
		auth.now = func() time.Time { return later }
		defer func() { auth.now = func() time.Time { return now } }()

		result, err := auth.CompleteLogin(ctx, models.Identity{Subject: "gh|42", Name: "Jordan B", Username: "jordan"})
		require.NoError(t, err)
		assert.Equal(t, "Jordan B", result.User.Name)
		assert.True(t, result.User.CreatedAt.Equal(now))
		assert.True(t, result.User.LastLoginAt.Equal(later))
	})

	t.Run("identity must carry subject and username", func(t *testing.T) {
		_, err := auth.CompleteLogin(ctx, models.Identity{Name: "Nobody"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("username held by another subject", func(t *testing.T) {
		_, err := auth.CompleteLogin(ctx, models.Identity{Subject: "gh|43", Name: "Impostor", Username: "jordan"})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, RuleInvalidInput, validationErr.Rule)
		assert.NotErrorIs(t, err, ErrPersistence)

		user, err := users.FindByUsername(ctx, "jordan")
		require.NoError(t, err)
		assert.Equal(t, "gh|42", user.UserID)
	})
}

func TestAuthService_LoginWithAssertion(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	auth := NewAuthService(users, "test-secret", "handoff-secret", time.Hour)
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	auth.SetClock(func() time.Time { return now })
	identity := models.Identity{Subject: "google|7", Name: "Pat Example", Username: "pat"}

	assertion, err := SignIdentityAssertion("handoff-secret", identity, now, time.Minute)
	require.NoError(t, err)

	result, err := auth.LoginWithAssertion(ctx, assertion)
	require.NoError(t, err)
	assert.Equal(t, "google|7", result.User.UserID)
	assert.Equal(t, "Pat Example", result.User.Name)

	refused := func(t *testing.T, assertion string) {
		t.Helper()
		_, err := auth.LoginWithAssertion(ctx, assertion)
		assert.ErrorIs(t, err, ErrUnverifiedIdentity)
	}

	t.Run("signed with another secret", func(t *testing.T) {
		forged, err := SignIdentityAssertion("guessed-secret", models.Identity{Subject: "google|8", Username: "mallory"}, now, time.Minute)
		require.NoError(t, err)
		refused(t, forged)
	})

	t.Run("session token replayed as assertion", func(t *testing.T) {
		refused(t, result.Token)

		signedWithHandoff := NewAuthService(users, "handoff-secret", "handoff-secret", time.Hour)
		signedWithHandoff.SetClock(auth.now)
		token, err := signedWithHandoff.GenerateToken(result.User)
		require.NoError(t, err)
		refused(t, token)
	})

	t.Run("expired", func(t *testing.T) {
		stale, err := SignIdentityAssertion("handoff-secret", identity, now.Add(-2*time.Minute), time.Minute)
		require.NoError(t, err)
		refused(t, stale)
	})

	t.Run("lifetime too long", func(t *testing.T) {
		longLived, err := SignIdentityAssertion("handoff-secret", identity, now, time.Hour)
		require.NoError(t, err)
		refused(t, longLived)
	})

	t.Run("unsigned", func(t *testing.T) {
		refused(t, "")
		refused(t, "eyJhbGciOiJub25lIn0.eyJzdWIiOiJnb29nbGV8OCJ9.")
	})

	t.Run("no handoff secret configured", func(t *testing.T) {
		closed := NewAuthService(users, "test-secret", "", time.Hour)
		closed.SetClock(auth.now)
		_, err := closed.LoginWithAssertion(ctx, assertion)
		assert.ErrorIs(t, err, ErrUnverifiedIdentity)
	})

	t.Run("verified identity still needs a username", func(t *testing.T) {
		anonymous, err := SignIdentityAssertion("handoff-secret", models.Identity{Subject: "google|9"}, now, time.Minute)
		require.NoError(t, err)
		_, err = auth.LoginWithAssertion(ctx, anonymous)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	users := memory.NewUserRepository()
	auth := NewAuthService(users, "test-secret", "handoff-secret", time.Hour)
	issued := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return issued }

	token, err := auth.GenerateToken(&models.User{UserID: "u1", Username: "u1"})
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService(users, "other-secret", "handoff-secret", time.Hour)
		other.now = auth.now
		_, err := other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		auth.now = func() time.Time { return issued.Add(2 * time.Hour) }
		defer func() { auth.now = func() time.Time { return issued } }()
		_, err := auth.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := auth.GetUserFromToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
