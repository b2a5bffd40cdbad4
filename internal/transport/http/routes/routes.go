package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/infra/config"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/transport/http/handlers"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/transport/http/middleware"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Lifecycle     *usecase.LifecycleService
	Sessions      *usecase.SessionService
	PasswordReset *usecase.PasswordResetService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireSession := middleware.RequireSession(deps.Services.Sessions, deps.Config.Session.CookieName)
	requireAdmin := middleware.RequireAdmin(deps.Services.Lifecycle)

	secureCookies := deps.Config.App.Env == "production"

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		var codeGuard []gin.HandlerFunc
		if deps.RateLimiter != nil {
			authGroup.Use(deps.RateLimiter.Limit(middleware.RateLimitRule{
				Name:   "auth",
				Limit:  deps.Config.RateLimit.LoginMaxAttempts,
				Window: deps.Config.RateLimit.WindowDuration,
			}))
			// Code-sending routes trigger outbound mail, so they get a
			// tighter window on top of the group limit.
			codeGuard = append(codeGuard, deps.RateLimiter.Limit(middleware.RateLimitRule{
				Name:   "otp",
				Limit:  deps.Config.RateLimit.OTPMaxAttempts,
				Window: deps.Config.RateLimit.WindowDuration,
			}))
		}

		authHandler := handlers.NewAuthHandler(
			deps.Services.Lifecycle,
			deps.Services.Sessions,
			deps.Config.Session.CookieName,
			secureCookies,
		)
		authHandler.RegisterRoutes(authGroup, codeGuard...)

		sessionGroup := authGroup.Group("")
		sessionGroup.Use(requireSession)
		authHandler.RegisterSessionRoutes(sessionGroup)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset)
		passwordHandler.RegisterRoutes(authGroup, codeGuard...)

		adminGroup := api.Group("/admin")
		adminGroup.Use(requireSession, requireAdmin)

		adminHandler := handlers.NewAdminHandler(deps.Services.Lifecycle)
		adminHandler.RegisterRoutes(adminGroup)
	}

	return r
}
