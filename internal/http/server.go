// Package http exposes the project lifecycle over HTTP.
//
// Two surfaces share one lifecycle service: the provider-style surface
// (/api/v1/projects, /api/v1/switch, /api/v1/types) and the direct-invocation
// surface (/api/v1/uri).
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectd/internal/instances"
	"github.com/fyrsmithlabs/projectd/internal/lifecycle"
	"github.com/fyrsmithlabs/projectd/internal/logging"
	"github.com/fyrsmithlabs/projectd/internal/project"
	"github.com/fyrsmithlabs/projectd/internal/resolver"
	"github.com/fyrsmithlabs/projectd/internal/settings"
)

// Surface names recorded in logs and analytics.
const (
	SurfaceProvider = "provider"
	SurfaceURI      = resolver.Surface
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// RateLimit is requests per second per client IP on /api/v1. Zero disables it.
	RateLimit float64
	RateBurst int
}

// Deps are the services the handlers call.
type Deps struct {
	Lifecycle *lifecycle.Service
	Resolver  *resolver.Resolver
	Projects  project.Repository
	Current   *project.DataService
	Settings  settings.Store
	Forms     instances.FormStore
	Instances instances.InstancesRepository
	Gatherer  prometheus.Gatherer
	Meter     metric.MeterProvider
}

// Server provides HTTP endpoints for projectd.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger *logging.Logger
	config *Config
}

type echoValidator struct {
	v *validator.Validate
}

func (ev *echoValidator) Validate(i interface{}) error {
	return ev.v.Struct(i)
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, logger *logging.Logger, cfg *Config) (*Server, error) {
	if deps.Lifecycle == nil || deps.Resolver == nil || deps.Projects == nil || deps.Current == nil || deps.Settings == nil {
		return nil, fmt.Errorf("lifecycle, resolver, projects, current and settings are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9191,
		}
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.Forms == nil {
		deps.Forms = instances.NewMemoryForms()
	}
	if deps.Instances == nil {
		deps.Instances = instances.NewMemoryInstances()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := resolver.RegisterRules(v); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}
	e.Validator = &echoValidator{v: v}

	s := &Server{
		echo:   e,
		deps:   deps,
		logger: logger,
		config: cfg,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.contextMiddleware)
	e.Use(s.requestLogMiddleware)
	e.Use(NewHTTPMetrics(deps.Meter, logger).MetricsMiddleware())

	s.registerRoutes()

	return s, nil
}

// contextMiddleware carries the request id and logger into the request context.
func (s *Server) contextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		ctx = logging.WithRequestID(ctx, c.Response().Header().Get(echo.HeaderXRequestID))
		ctx = logging.WithLogger(ctx, s.logger)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (s *Server) requestLogMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		s.logger.Info(c.Request().Context(), "http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/api/v1")
	if s.config.RateLimit > 0 {
		burst := s.config.RateBurst
		if burst <= 0 {
			burst = 1
		}
		v1.Use(newIPLimiter(s.config.RateLimit, burst).middleware())
	}

	provider := v1.Group("", withSurface(SurfaceProvider))
	provider.POST("/projects", s.handleInsert)
	provider.DELETE("/projects", s.handleDelete)
	provider.PUT("/switch", s.handleSwitch)
	provider.GET("/types/:path", s.handleGetType)
	provider.GET("/projects", s.handleList)
	provider.GET("/projects/current", s.handleCurrent)
	provider.GET("/projects/:id", s.handleGetProject)

	provider.PUT("/projects/:id/settings/general", s.handleUpdateGeneral)
	provider.POST("/projects/:id/forms", s.handleAddForm)
	provider.POST("/projects/:id/instances", s.handleAddInstance)
	provider.GET("/projects/:id/instances/:instance/auto-delete", s.handleAutoDelete)

	direct := v1.Group("/uri", withSurface(SurfaceURI))
	direct.POST("", s.handleURI)
	direct.POST("/choose", s.handleChoose)
}

func withSurface(surface string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(logging.WithSurface(c.Request().Context(), surface)))
			return next(c)
		}
	}
}

// handleHealth reports liveness plus registry size.
func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	all, err := s.deps.Projects.GetAll(ctx)
	if err != nil {
		s.logger.Error(ctx, "health: registry unavailable", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded"})
	}
	cur, _ := s.deps.Current.CurrentID(ctx)
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Projects: len(all), CurrentProject: cur})
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
