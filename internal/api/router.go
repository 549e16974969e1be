package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/middleware"
)

// RouterConfig contains configuration for the HTTP router
type RouterConfig struct {
	CORSOrigins    []string
	BodyLimit      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimitRPS   int
	RateLimitBurst int
}

// RouterDependencies contains all dependencies needed by the router
type RouterDependencies struct {
	Catalog       domain.VersionCatalog
	Installed     domain.InstalledVersions
	Downloads     DownloadService
	Instances     domain.InstanceRepository
	Launcher      Launcher
	Mods          ModBrowser
	Releases      ReleaseTracker
	HealthChecker domain.HealthChecker
}

// RouterResult contains the configured app and cleanup function
type RouterResult struct {
	App     *fiber.App
	Cleanup func()
}

// SetupRouter creates and configures the Fiber app with all routes and middleware
func SetupRouter(deps RouterDependencies, config RouterConfig) *RouterResult {
	app := fiber.New(fiber.Config{
		AppName:               "vslauncher",
		BodyLimit:             config.BodyLimit,
		ReadTimeout:           config.ReadTimeout,
		WriteTimeout:          config.WriteTimeout,
		ErrorHandler:          customErrorHandler,
		UnescapePath:          true,
		DisableStartupMessage: true,
	})

	handlers := NewHandlers(deps)

	// Middleware pipeline (order is critical)

	// 1. RequestID middleware for UUID generation
	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	// 2. Propagate the request ID into the handler context for error enrichment
	app.Use(requestContextMiddleware())

	// 3. Structured logging middleware with zerolog
	app.Use(structuredLoggingMiddleware())

	// 4. Panic recovery middleware with stack trace logging
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error().
				Str("request_id", requestID(c)).
				Interface("panic", e).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("Panic recovered")
		},
	}))

	// 5. Security headers middleware
	app.Use(securityHeadersMiddleware())

	// 6. Rate limiting middleware
	var stopRateLimiter func()
	if config.RateLimitRPS > 0 {
		rateLimiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		stopRateLimiter = rateLimiter.StartCleanupRoutine()
		app.Use(rateLimiter.Middleware())
	}

	// 7. CORS for browser front-ends
	if len(config.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(config.CORSOrigins, ","),
			AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,X-Request-ID,X-Client-Name",
			AllowCredentials: false,
			MaxAge:           86400,
		}))
	}

	v1 := app.Group("/v1")

	// Version catalog
	v1.Get("/versions", handlers.ListVersionsHandler)
	v1.Get("/versions/installed", handlers.ListInstalledHandler)
	v1.Get("/versions/latest", handlers.LatestReleaseHandler)

	// Downloads
	v1.Post("/downloads", handlers.StartDownloadHandler)
	v1.Get("/downloads", handlers.ListDownloadsHandler)
	v1.Get("/downloads/:id", handlers.GetDownloadHandler)
	v1.Delete("/downloads/:id", handlers.CancelDownloadHandler)

	// Instances
	v1.Get("/instances", handlers.ListInstancesHandler)
	v1.Post("/instances", handlers.CreateInstanceHandler)
	v1.Get("/instances/:name", handlers.GetInstanceHandler)
	v1.Delete("/instances/:name", handlers.DeleteInstanceHandler)
	v1.Put("/instances/:name/version", handlers.RebindInstanceHandler)
	v1.Put("/instances/:name/name", handlers.RenameInstanceHandler)
	v1.Post("/instances/:name/launch", handlers.LaunchInstanceHandler)

	// Mods
	v1.Get("/mods", handlers.ListModsHandler)

	app.Get("/health", handlers.HealthHandler)
	app.Get("/swagger/*", swagger.HandlerDefault)

	cleanup := func() {
		if stopRateLimiter != nil {
			stopRateLimiter()
		}
	}

	return &RouterResult{App: app, Cleanup: cleanup}
}

// customErrorHandler handles Fiber framework errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	switch code {
	case fiber.StatusRequestEntityTooLarge:
		return c.Status(code).JSON(ErrorResponse{
			Status:  "error",
			Code:    domain.ErrInvalidInput,
			Message: "Request payload too large",
		})
	case fiber.StatusBadRequest:
		return c.Status(code).JSON(ErrorResponse{
			Status:  "error",
			Code:    domain.ErrInvalidInput,
			Message: message,
		})
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return c.Status(code).JSON(ErrorResponse{
			Status:  "error",
			Code:    domain.ErrNotFound,
			Message: message,
		})
	default:
		return c.Status(code).JSON(ErrorResponse{
			Status:  "error",
			Code:    domain.ErrInternal,
			Message: message,
		})
	}
}

func requestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(domain.WithRequestID(c.UserContext(), requestID(c)))
		return c.Next()
	}
}

// structuredLoggingMiddleware logs one line per request with zerolog
func structuredLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		logEvent := log.Debug()
		switch {
		case status >= 500:
			logEvent = log.Error()
		case status >= 400:
			logEvent = log.Warn()
		}

		logEvent.
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Int("response_size", len(c.Response().Body())).
			Msg("HTTP request processed")

		return err
	}
}

// securityHeadersMiddleware adds security headers
func securityHeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Cache-Control", "no-store")
		return c.Next()
	}
}
