package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/healthrec/healthrec/internal/config"
	"github.com/healthrec/healthrec/internal/domain/doctor"
	"github.com/healthrec/healthrec/internal/domain/mapping"
	"github.com/healthrec/healthrec/internal/domain/patient"
	"github.com/healthrec/healthrec/internal/platform/apperr"
	"github.com/healthrec/healthrec/internal/platform/auth"
	"github.com/healthrec/healthrec/internal/platform/db"
	"github.com/healthrec/healthrec/internal/platform/middleware"
)

const version = "0.1.0"

// newServer builds the echo instance with every middleware and route.
func newServer(cfg *config.Config, logger zerolog.Logger, pool *pgxpool.Pool) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	// Collection and item routes end in a slash; requests without one are
	// routed as if it were there.
	e.Pre(echomw.AddTrailingSlashWithConfig(echomw.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/health")
		},
	}))

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader, auth.DevUserHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Auth middleware
	authMW, err := authMiddleware(cfg, logger)
	if err != nil {
		return nil, err
	}
	e.Use(authMW)

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	rateLimitCfg.Skipper = auth.AuthSkipper
	e.Use(middleware.RateLimit(rateLimitCfg))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool, func() *db.PoolStats { return db.GetPoolStats(pool) }))

	// Stores. The assignment repository doubles as the purger that patient
	// and doctor deletes call inside their transaction.
	tx := db.NewTransactor(pool)
	mappingRepo := mapping.NewRepo(pool)
	patientSvc := patient.NewService(patient.NewRepo(pool), tx, mappingRepo)
	doctorSvc := doctor.NewService(doctor.NewRepo(pool), tx, mappingRepo)
	mappingSvc := mapping.NewService(mappingRepo, patientSvc, doctorSvc)

	api := e.Group("")
	api.Use(auth.RequireUser())
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)
	mapping.NewHandler(mappingSvc).RegisterRoutes(api)

	return e, nil
}

// authMiddleware picks development header auth or bearer token
// verification.
func authMiddleware(cfg *config.Config, logger zerolog.Logger) (echo.MiddlewareFunc, error) {
	if cfg.IsDev() {
		logger.Warn().Msg("development auth enabled: identities are taken from the " + auth.DevUserHeader + " header")
		return auth.DevAuthMiddleware(auth.AuthSkipper), nil
	}

	jwtCfg := auth.JWTConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
		Skipper:  auth.AuthSkipper,
	}
	if cfg.AuthSigningKey != "" {
		jwtCfg.SigningKey = []byte(cfg.AuthSigningKey)
	} else if jwtCfg.JWKSURL == "" {
		url, err := auth.DiscoverJWKSURL(cfg.AuthIssuer)
		if err != nil {
			return nil, fmt.Errorf("discover JWKS URL: %w", err)
		}
		logger.Info().Str("jwks_url", url).Msg("discovered JWKS endpoint")
		jwtCfg.JWKSURL = url
	}
	return auth.JWTMiddleware(jwtCfg), nil
}
