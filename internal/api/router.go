package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/launchkit/boilerplate/docs"
	"github.com/launchkit/boilerplate/internal/api/handler"
	"github.com/launchkit/boilerplate/internal/api/middleware"
	"github.com/launchkit/boilerplate/internal/core/ports"
	"github.com/launchkit/boilerplate/internal/infrastructure/config"
	"github.com/launchkit/boilerplate/internal/web"
)

// Dependencies carries everything the router needs wired in.
type Dependencies struct {
	Config   *config.Config
	Identity ports.IdentityProvider
	Roles    ports.RoleService
	Limiter  middleware.Limiter
	Mongo    *mongo.Database
	Redis    *redis.Client
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("webapp"))
	e.Use(middleware.SessionGate(deps.Identity, middleware.SessionGateConfig{
		Prefixes:   deps.Config.ProtectedPrefixes(),
		CookieName: deps.Config.SessionCookie,
		SignInPath: deps.Config.SignInPath,
	}))

	// --- JSON API ---
	roleHandler := handler.NewRoleHandler(deps.Identity, deps.Roles)
	userHandler := handler.NewUserHandler(deps.Identity, deps.Roles)
	authHandler := handler.NewAuthHandler(deps.Identity, handler.SessionCookie{
		Name:   deps.Config.SessionCookie,
		Secure: deps.Config.Env == "production",
	})

	apiGroup := e.Group("/api")
	apiGroup.GET("/admin/count", roleHandler.AdminCount)
	apiGroup.POST("/users/promote", roleHandler.Promote)
	apiGroup.GET("/users", userHandler.List)
	apiGroup.POST("/auth/sign-in", authHandler.SignIn, middleware.SignInRateLimit(deps.Limiter, deps.Logger))
	apiGroup.POST("/auth/sign-up", authHandler.SignUp)
	apiGroup.POST("/auth/sign-out", authHandler.SignOut)

	// --- Pages ---
	web.NewHandler().Register(e)

	// --- Health probes and operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}
