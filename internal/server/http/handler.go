package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"charforge/internal/server/core"
	"charforge/internal/server/processor"
	"charforge/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

// AppConfig tunes the Fiber app
type AppConfig struct {
	DevMode          bool
	DisableRateLimit bool
	DisableAccessLog bool
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

// NewFiberApp builds the API with the default rate limits
func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	return NewFiberAppWithConfig(proc, svc, AppConfig{DevMode: devMode})
}

func NewFiberAppWithConfig(proc *processor.Processor, svc *service.Service, cfg AppConfig) *fiber.App {
	h := NewHTTPHandler(proc, svc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		// path params reach the debouncer and the roll feed, which outlive the request
		Immutable:    true,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second, // covers the longest roll long-poll
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	if !cfg.DisableAccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	auth := api.Group("/auth")

	auth.Post("/register", perMinuteLimit(cfg, 5, "registrations"), h.RegisterHandler)
	auth.Post("/login", perMinuteLimit(cfg, 10, "login attempts"), h.LoginHandler)

	validateToken := svc.ValidateToken
	requireAuth := AuthRequired(validateToken)

	auth.Get("/me", requireAuth, h.GetCurrentUserHandler)
	auth.Post("/logout", requireAuth, h.LogoutHandler)

	if !cfg.DisableRateLimit {
		maxReq := rateLimitRate
		if cfg.DevMode {
			maxReq = rateLimitRate * 2
		}
		api.Use(limiter.New(limiter.Config{
			Max:        maxReq,
			Expiration: 1 * time.Second,
			KeyGenerator: func(c *fiber.Ctx) string {
				if xff := c.Get("X-Forwarded-For"); xff != "" {
					if idx := strings.Index(xff, ","); idx != -1 {
						return strings.TrimSpace(xff[:idx])
					}
					return xff
				}
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
					Error:   "rate limit exceeded",
					Code:    core.ErrRateLimitExceeded,
					Details: fmt.Sprintf("%d requests per second allowed", maxReq),
				})
			},
		}))
	}

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	// Build helper, no auth needed
	api.Get("/traits/options", h.TraitOptions)

	chars := api.Group("/characters", requireAuth)
	chars.Post("/", h.SubmitBuild)
	chars.Get("/", h.ListCharacters)
	chars.Get("/:characterId", h.GetSheet)
	chars.Put("/:characterId/trackers/:tracker", h.SetTracker)
	chars.Post("/:characterId/trackers/:tracker/click", h.ClickTracker)
	chars.Post("/:characterId/rolls/duality", h.RollDuality)
	chars.Post("/:characterId/rolls/standard", h.RollStandard)

	api.Get("/rolls", requireAuth, h.RecentRolls)

	mod := api.Group("/moderator", requireAuth)
	mod.Get("/players/:playerId/rolls", h.ModeratorRolls)
	mod.Get("/characters/:characterId", h.ModeratorSheet)

	return app
}

func perMinuteLimit(cfg AppConfig, max int, what string) fiber.Handler {
	if cfg.DisableRateLimit {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d %s per minute allowed", max, what),
			})
		},
	})
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType, _, _ := strings.Cut(c.Get("Content-Type"), ";")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes to HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrInvalidRequest, core.ErrValidationFailed, core.ErrInvalidDice:
		return fiber.StatusBadRequest
	case core.ErrUnauthorized:
		return fiber.StatusUnauthorized
	case core.ErrForbiddenAccess:
		return fiber.StatusForbidden
	case core.ErrNotFound:
		return fiber.StatusNotFound
	case core.ErrPersistenceFailed, core.ErrStorageDisabled, core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respond writes a processor response with the given success status
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, status int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	return c.Status(status).JSON(resp.Data)
}

func badRequest(c *fiber.Ctx, message, details string) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   message,
		Code:    core.ErrInvalidRequest,
		Details: details,
	})
}

// invalidID rejects a malformed UUID path parameter
func invalidID(c *fiber.Ctx, what string) error {
	return badRequest(c, fmt.Sprintf("invalid %s ID format", what), what+" ID must be a valid UUID")
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}
