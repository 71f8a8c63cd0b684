package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/accesshub/identity-service/docs"
	"github.com/accesshub/identity-service/internal/api/handler"
	"github.com/accesshub/identity-service/internal/api/middleware"
	"github.com/accesshub/identity-service/internal/core/ports"
)

// Deps are the services and probes the router serves.
type Deps struct {
	Roles  ports.RoleService
	Users  ports.UserService
	Access ports.AccessService
	Bulk   ports.BulkService
	// Health maps a dependency name to its readiness probe.
	Health map[string]handler.Pinger
	Logger zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational routes ---
	health := handler.NewHealthHandler(deps.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1/api")

	// --- Roles ---
	roles := handler.NewRoleHandler(deps.Roles)
	r := v1.Group("/roles")
	r.POST("/create", roles.Create)
	r.GET("/list", roles.List)
	r.GET("/get-role/:id", roles.Get)
	r.PUT("/update-role/:id", roles.Update)
	r.DELETE("/delete-role/:id", roles.Delete)

	// --- Users ---
	users := handler.NewUserHandler(deps.Users)
	access := handler.NewAccessHandler(deps.Access)
	bulk := handler.NewBulkHandler(deps.Bulk)
	u := v1.Group("/user")
	u.POST("/signup", users.Signup)
	u.POST("/login", users.Login)
	u.GET("/list", users.List)
	u.GET("/get-user/:id", users.Get)
	u.PUT("/update-user/:id", users.Update)
	u.DELETE("/delete-user/:id", users.Delete)
	u.GET("/access-check", access.Check)
	u.POST("/access-check", access.Check)
	u.PUT("/bulk-update-same", bulk.UpdateSame)
	u.PUT("/bulk-update-different", bulk.UpdateDifferent)

	return e
}
