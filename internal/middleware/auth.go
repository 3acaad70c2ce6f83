package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// Auth0IDKey is the context key for the Auth0 user ID (subject)
	Auth0IDKey contextKey = "auth0_id"
	// UserIDKey is the context key for the resolved local user ID
	UserIDKey contextKey = "user_id"
)

// UserProvider resolves an Auth0 subject to a local user, provisioning one on
// first sight
type UserProvider interface {
	GetOrCreateUserID(auth0ID, email string, name *string) (int32, error)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator    *validator.Validator
	userProvider UserProvider
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(domain, audience string, userProvider UserProvider) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMiddleware{
		validator:    jwtValidator,
		userProvider: userProvider,
	}, nil
}

// ValidateToken validates a raw bearer token and returns its subject and
// claims. Exposed for the WebSocket handshake, which carries the token in a
// query parameter instead of a header.
func (m *AuthMiddleware) ValidateToken(ctx context.Context, token string) (string, *CustomClaims, error) {
	claims, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", nil, err
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
	}

	custom, _ := validatedClaims.CustomClaims.(*CustomClaims)
	if custom == nil {
		custom = &CustomClaims{}
	}
	return validatedClaims.RegisteredClaims.Subject, custom, nil
}

// ResolveUser maps an Auth0 subject to the local user ID, provisioning on
// first sight
func (m *AuthMiddleware) ResolveUser(auth0ID string, claims *CustomClaims) (int32, error) {
	var name *string
	if claims.Name != "" {
		name = &claims.Name
	}
	return m.userProvider.GetOrCreateUserID(auth0ID, claims.Email, name)
}

// Authenticate returns an Echo middleware that validates JWT tokens and
// injects the resolved user ID into the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			auth0ID, claims, err := m.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, err := m.ResolveUser(auth0ID, claims)
			if err != nil {
				log.Error().Err(err).Str("auth0_id", auth0ID).Msg("User resolution failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "user resolution failed")
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, Auth0IDKey, auth0ID)
			ctx = context.WithValue(ctx, UserIDKey, userID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID extracts the resolved user ID from the request context. Zero
// means unauthenticated.
func GetUserID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(UserIDKey).(int32); ok {
		return id
	}
	return 0
}

// GetAuth0ID extracts the Auth0 subject from the request context
func GetAuth0ID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(Auth0IDKey).(string); ok {
		return id
	}
	return ""
}
