package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"pickem-app/database"
	"pickem-app/interfaces"
	"pickem-app/logging"
	"pickem-app/models"
)

// ErrInvalidToken is returned for any session token that fails validation
var ErrInvalidToken = errors.New("invalid token")

// ErrUnverifiedIdentity is returned when a login is not backed by a valid
// identity assertion
var ErrUnverifiedIdentity = errors.New("identity assertion rejected")

// AuthService turns a provider-verified identity into a session token
type AuthService struct {
	users         interfaces.UserRepository
	jwtSecret     []byte
	handoffSecret []byte
	tokenExpiry   time.Duration
	validate      *validator.Validate
	now           func() time.Time
	logger        *logging.Logger
}

// JWTClaims represents the claims in our session token
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginResult is returned after a completed login
type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// IdentityClaims is the assertion the identity-provider front end signs with
// the shared handoff secret once it has verified the user
type IdentityClaims struct {
	Name     string `json:"name"`
	Username string `json:"preferred_username"`
	jwt.RegisteredClaims
}

const (
	tokenIssuer      = "pickem-app"
	identityAudience = "pickem-app-login"

	// MaxAssertionLifetime bounds how long a signed handoff can be replayed
	MaxAssertionLifetime = 5 * time.Minute
)

// NewAuthService creates a new authentication service. With an empty
// handoffSecret every assertion login is refused.
func NewAuthService(users interfaces.UserRepository, jwtSecret, handoffSecret string, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		jwtSecret:     []byte(jwtSecret),
		handoffSecret: []byte(handoffSecret),
		tokenExpiry:   tokenExpiry,
		validate:      validator.New(),
		now:           time.Now,
		logger:        logging.WithPrefix("auth"),
	}
}

// SetClock replaces the clock used for token timestamps
func (a *AuthService) SetClock(now func() time.Time) {
	a.now = now
}

// SignIdentityAssertion produces the handoff the login endpoint accepts
func SignIdentityAssertion(handoffSecret string, identity models.Identity, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := IdentityClaims{
		Name:     identity.Name,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Audience:  jwt.ClaimStrings{identityAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(handoffSecret))
}

// VerifyIdentity checks a signed handoff and returns the identity it vouches
// for. Session tokens are refused since they carry no login audience.
func (a *AuthService) VerifyIdentity(assertion string) (models.Identity, error) {
	if len(a.handoffSecret) == 0 {
		return models.Identity{}, errors.Join(ErrUnverifiedIdentity, errors.New("no handoff secret configured"))
	}

	token, err := jwt.ParseWithClaims(assertion, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.handoffSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(identityAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return models.Identity{}, errors.Join(ErrUnverifiedIdentity, err)
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return models.Identity{}, ErrUnverifiedIdentity
	}
	if claims.IssuedAt == nil || claims.ExpiresAt.Sub(claims.IssuedAt.Time) > MaxAssertionLifetime {
		return models.Identity{}, errors.Join(ErrUnverifiedIdentity, errors.New("assertion lifetime too long"))
	}

	return models.Identity{Subject: claims.Subject, Name: claims.Name, Username: claims.Username}, nil
}

// LoginWithAssertion verifies a signed handoff and completes the login it
// vouches for
func (a *AuthService) LoginWithAssertion(ctx context.Context, assertion string) (*LoginResult, error) {
	identity, err := a.VerifyIdentity(assertion)
	if err != nil {
		a.logger.Warnf("Refused login: %v", err)
		return nil, err
	}
	return a.CompleteLogin(ctx, identity)
}

// CompleteLogin upserts an already verified identity and issues a session
// token
func (a *AuthService) CompleteLogin(ctx context.Context, identity models.Identity) (*LoginResult, error) {
	if err := a.validate.StructCtx(ctx, identity); err != nil {
		return nil, newValidationError(RuleInvalidInput, "identity: %v", err)
	}

	user, err := a.users.UpsertLogin(ctx, identity, a.now().UTC())
	if errors.Is(err, database.ErrDuplicate) {
		return nil, newValidationError(RuleInvalidInput, "username %q belongs to another account", identity.Username)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "upsert user", Err: err}
	}

	token, err := a.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	a.logger.Infof("User %s (%s) logged in", user.UserID, user.Username)
	return &LoginResult{User: user, Token: token}, nil
}

// GenerateToken creates a new HS256 session token for the user
func (a *AuthService) GenerateToken(user *models.User) (string, error) {
	now := a.now()
	claims := JWTClaims{
		UserID:   user.UserID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken validates a session token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetUserFromToken validates a token and loads its user
func (a *AuthService) GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := a.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, storeError("find user", "user", claims.UserID, err)
	}
	return user, nil
}
