package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/allerview/portal-gateway/internal/api/handler"
	"github.com/allerview/portal-gateway/internal/api/middleware"
	"github.com/allerview/portal-gateway/internal/core/policy"
	"github.com/allerview/portal-gateway/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	sessions ports.SessionService,
	db *mongo.Database,
	rdb *redis.Client,
	cookie middleware.CookieConfig,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(middleware.Session(cookie))

	authHandler := handler.NewAuthHandler(sessions)
	areaHandler := handler.NewAreaHandler(sessions)

	// --- Auth surface ---
	auth := e.Group("/auth")
	auth.GET("/session", authHandler.Session)
	auth.POST("/simple/login", authHandler.LoginSimple)
	auth.POST("/simple/register", authHandler.RegisterSimple)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/pin/ack", authHandler.AcknowledgePin)
	auth.GET("/google/login", authHandler.DelegatedLogin)
	auth.GET("/google/callback", authHandler.DelegatedCallback)

	// --- Application areas, one guarded prefix per shell ---
	e.GET("/login", areaHandler.Login)

	app := e.Group("/app", middleware.Guard(policy.AreaConsumer, sessions))
	app.GET("", areaHandler.Landing(policy.AreaConsumer))

	pro := e.Group("/pro", middleware.Guard(policy.AreaProfessional, sessions))
	pro.GET("", areaHandler.Landing(policy.AreaProfessional))

	admin := e.Group("/admin", middleware.Guard(policy.AreaAdmin, sessions))
	admin.GET("", areaHandler.Landing(policy.AreaAdmin))

	system := admin.Group("/system", middleware.Guard(policy.AreaSuperAdmin, sessions))
	system.GET("", areaHandler.Landing(policy.AreaSuperAdmin))

	// --- Health probes and metrics (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Catch-all: unmatched paths land on the computed default area ---
	e.GET("/*", areaHandler.Root)

	return e
}
