// Package server wires the HTTP surface of the application: routing,
// middleware and request handlers.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds the application's shared dependencies and hangs the HTTP
// handlers off them.
type Server struct {
	config *config.Config
	db     *gorm.DB
	redis  *redis.Client
	users  repository.UserRepository
	posts  repository.PostRepository
	gate   *auth.Gate
}

// NewServer builds a fully-wired Server: it connects to the database, runs
// migrations and initializes the cache.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	return New(cfg, db, cache.GetClient()), nil
}

// New assembles a Server from pre-built dependencies. Tests use it to run
// against an in-memory database and without Redis.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	users := repository.NewUserRepository(db)
	tokens := auth.NewTokens(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL(),
	})

	return &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		users:  users,
		posts:  repository.NewPostRepository(db),
		gate:   auth.NewGate(users, tokens),
	}
}

// DB exposes the underlying database handle, mainly for test seeding.
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Shutdown releases the server's backing resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.WarnContext(ctx, "redis close failed", slog.Any("error", err))
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SetupMiddleware registers the global middleware stack. Order matters:
// request IDs and logging context come first so everything downstream logs
// with them.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	prometheus := fiberprometheus.New("inkwell")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// CORS runs before the limiter so browser clients still receive CORS
	// headers on throttled responses.
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes registers all HTTP routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/healthz", s.HealthCheck)
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Inkwell Metrics Dashboard",
	}))

	// Credential endpoints get a tighter rate limit than the global one.
	authLimit := middleware.RateLimit(s.redis, 10, time.Minute, "auth")
	app.Post("/register", authLimit, s.Register)
	app.Post("/token", authLimit, s.Token)

	app.Get("/posts", s.GetPosts)
	app.Get("/posts/search", s.SearchPosts)
	app.Get("/posts/statistics/:userId", s.GetUserStatistics)
	app.Get("/post/:id", s.GetPost)

	authRequired := middleware.AuthRequired(s.gate)
	app.Post("/posts", authRequired, s.CreatePost)
	app.Put("/posts/:id", authRequired, s.UpdatePost)
	app.Delete("/posts/:id", authRequired, s.DeletePost)
}

// HealthCheck reports liveness plus the state of the backing services.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "ok"
		if err := s.redis.Ping(c.Context()).Err(); err != nil {
			redisStatus = "unavailable"
		}
	}

	status := fiber.StatusOK
	if dbStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status":   dbStatus,
		"database": dbStatus,
		"redis":    redisStatus,
	})
}

// respondStoreError translates an AppError from the storage layer into the
// matching HTTP response. Unknown errors become a 500 without leaking
// internals.
func respondStoreError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case models.CodeValidation:
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case models.CodeUnauthorized:
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		case models.CodeForbidden:
			return models.RespondWithError(c, fiber.StatusForbidden, appErr)
		case models.CodeConflict:
			return models.RespondWithError(c, fiber.StatusConflict, appErr)
		}
	}

	observability.RecordErrorInContext(c.UserContext(), err)
	middleware.Logger.ErrorContext(c.Context(), "unhandled storage error", slog.Any("error", err))
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(nil))
}
