package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// DevUserHeader lets local clients pick an identity when DevAuthMiddleware
// is active.
const DevUserHeader = "X-Dev-User"

const defaultDevUser = "dev-user"

// Response detail for requests that carry no usable identity.
const msgNotAuthenticated = "Authentication credentials were not provided."

type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// SigningKey selects HS256 verification; otherwise keys come from JWKSURL.
	SigningKey []byte
	Skipper    middleware.Skipper
}

// JWTMiddleware verifies the bearer token and binds its subject to the
// request context as the caller's identity.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	var keyFunc jwt.Keyfunc
	methods := []string{"HS256"}
	if len(cfg.SigningKey) > 0 {
		keyFunc = func(*jwt.Token) (interface{}, error) { return cfg.SigningKey, nil }
	} else {
		methods = []string{"RS256"}
		keyFunc = NewJWKSCache(cfg.JWKSURL, defaultJWKSCacheTTL).KeyFunc()
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods(methods)}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, msgNotAuthenticated)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &jwt.RegisteredClaims{}
			token, err := parser.ParseWithClaims(parts[1], claims, keyFunc)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}

			c.SetRequest(c.Request().WithContext(WithUserID(c.Request().Context(), claims.Subject)))
			return next(c)
		}
	}
}

// DevAuthMiddleware is a permissive middleware for development. Every
// request is attributed to the X-Dev-User header value, or to "dev-user".
func DevAuthMiddleware(skipper middleware.Skipper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}
			user := strings.TrimSpace(c.Request().Header.Get(DevUserHeader))
			if user == "" {
				user = defaultDevUser
			}
			c.SetRequest(c.Request().WithContext(WithUserID(c.Request().Context(), user)))
			return next(c)
		}
	}
}

// RequireUser rejects requests that reached a protected route without an
// identity.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserIDFromContext(c.Request().Context()) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, msgNotAuthenticated)
			}
			return next(c)
		}
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}
