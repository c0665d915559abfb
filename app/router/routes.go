// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/app/dto"
	"github.com/Thien222/ManageCustomerInBank-BE/app/handlers"
	"github.com/Thien222/ManageCustomerInBank-BE/app/middleware"
	"github.com/Thien222/ManageCustomerInBank-BE/config"
	"github.com/Thien222/ManageCustomerInBank-BE/models"
	"github.com/Thien222/ManageCustomerInBank-BE/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	cfg            *config.ProductionConfig
	authMiddleware *middleware.AuthMiddleware
	authHandler    handlers.AuthHandlerInterface
	adminHandler   handlers.AdminAccountHandlerInterface
	caseHandler    handlers.CaseRecordHandlerInterface
	reportHandler  handlers.ReportHandlerInterface
	chatbotHandler handlers.ChatbotHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	authMiddleware *middleware.AuthMiddleware,
	authHandler handlers.AuthHandlerInterface,
	adminHandler handlers.AdminAccountHandlerInterface,
	caseHandler handlers.CaseRecordHandlerInterface,
	reportHandler handlers.ReportHandlerInterface,
	chatbotHandler handlers.ChatbotHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "ManageCustomerInBank API",
		ServerHeader: "ManageCustomerInBank",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		cfg:            cfg,
		authMiddleware: authMiddleware,
		authHandler:    authHandler,
		adminHandler:   adminHandler,
		caseHandler:    caseHandler,
		reportHandler:  reportHandler,
		chatbotHandler: chatbotHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group and rate limiters
	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.authHandler.Health)

	// General rate limiting for all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.AuthRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))

	auth.Post("/register", r.authHandler.Register)
	auth.Post("/verify-otp", r.authHandler.VerifyOTP)
	auth.Post("/resend-otp", r.authHandler.ResendOTP)
	auth.Post("/login", r.authHandler.Login)
	auth.Post("/refresh", r.authHandler.Refresh)
	auth.Post("/logout", r.authMiddleware.Authenticate(), r.authHandler.Logout)

	// Admin-only account management
	admin := api.Group("/admin", r.authMiddleware.Authenticate(), r.authMiddleware.RequireRoles(models.RoleAdmin))
	admin.Get("/users", r.adminHandler.ListAccounts)
	admin.Post("/users", r.adminHandler.CreateAccount)
	admin.Get("/users/:id", r.adminHandler.GetAccount)
	admin.Post("/users/:id/approve", r.adminHandler.ApproveAccount)
	admin.Put("/users/:id", r.adminHandler.UpdateAccount)
	admin.Delete("/users/:id", r.adminHandler.DeleteAccount)

	// Case record lifecycle and workflow. All endpoints require a valid token;
	// the transition endpoints are additionally gated by the acting role.
	cases := api.Group("/case-records", r.authMiddleware.Authenticate())
	cases.Get("/pending-intake",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleCreditAdmin),
		r.caseHandler.ListPendingIntake)
	cases.Post("",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleBoardDirector, models.RoleAccountManager, models.RoleTransactionManager),
		r.caseHandler.Create)
	cases.Get("", r.caseHandler.List)
	cases.Get("/:id", r.caseHandler.Get)
	cases.Put("/:id",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleBoardDirector, models.RoleAccountManager, models.RoleTransactionManager),
		r.caseHandler.Update)
	cases.Delete("/:id",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleBoardDirector),
		r.caseHandler.Delete)

	// Branch side hands over, credit admin receives or rejects and later
	// returns, the account manager closes the loop on the returned documents
	cases.Post("/:id/handover",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleBoardDirector),
		r.caseHandler.Handover)
	cases.Post("/:id/receive",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleCreditAdmin),
		r.caseHandler.Receive)
	cases.Post("/:id/reject-receipt",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleCreditAdmin),
		r.caseHandler.RejectIntake)
	cases.Post("/:id/return",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleCreditAdmin),
		r.caseHandler.ReturnToBranch)
	cases.Post("/:id/confirm-documents",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleAccountManager),
		r.caseHandler.ConfirmDocumentReceipt)
	cases.Post("/:id/reject-documents",
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleAccountManager),
		r.caseHandler.RejectDocumentReceipt)

	// Financial reporting, restricted by the role carried in the token
	financial := api.Group("/financial", r.authMiddleware.Authenticate(),
		r.authMiddleware.RequireRoles(models.RoleAdmin, models.RoleCreditAdmin, models.RoleBoardDirector))
	financial.Get("/dashboard", r.reportHandler.Dashboard)
	financial.Get("/export", r.reportHandler.Export)

	// AI assistant
	ai := api.Group("/ai", r.authMiddleware.Authenticate())
	ai.Post("/chatbot", r.chatbotHandler.Ask)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		HSTSExcludeSubdomains: false,
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	// CORS middleware driven by configuration
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	// Compression middleware for performance
	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				contentType := c.Get("Content-Type")
				return strings.Contains(contentType, "image/") ||
					strings.Contains(contentType, "video/") ||
					strings.Contains(contentType, "audio/")
			},
		}))
	}

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Prometheus request metrics
	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// rateLimitReached renders the shared 429 response
func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
