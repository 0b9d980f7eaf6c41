// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "devhub/docs" // swagger docs
	"devhub/internal/auth"
	"devhub/internal/bootstrap"
	"devhub/internal/config"
	"devhub/internal/featureflags"
	"devhub/internal/middleware"
	"devhub/internal/models"
	"devhub/internal/notifications"
	"devhub/internal/repository"
	"devhub/internal/service"
	"devhub/internal/validation"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	log            *slog.Logger
	store          *repository.Store
	redis          *redis.Client
	runtime        *bootstrap.Runtime
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	guard    *middleware.AuthGuard
	limiter  *middleware.RateLimiter
	validate *validation.Validator

	notifier     *notifications.Notifier
	feedHub      *notifications.FeedHub
	featureFlags *featureflags.Manager

	userService    *service.UserService
	profileService *service.ProfileService
	postService    *service.PostService
	sessions       *service.SessionService
}

// NewServer connects the configured store and Redis and builds a Server on them.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg, log, bootstrap.Options{ApplySchema: true})
	if err != nil {
		return nil, err
	}
	s := NewServerWithDeps(cfg, log, rt.Store, rt.Redis)
	s.runtime = rt
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// rdb may be nil, which disables rate limits, WebSocket tickets, token
// revocation and the realtime feed.
func NewServerWithDeps(cfg *config.Config, log *slog.Logger, store *repository.Store, rdb *redis.Client) *Server {
	tokens := auth.NewTokens(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	s := &Server{
		config:         cfg,
		log:            log,
		store:          store,
		redis:          rdb,
		promMiddleware: middleware.InitMetrics("devhub-api"),
		guard:          middleware.NewAuthGuard(tokens, rdb, log),
		limiter:        middleware.NewRateLimiter(rdb, rdb != nil && !isLocalEnv(cfg.Env), log),
		validate:       validation.New(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		sessions:       service.NewSessionService(rdb),
	}

	var feed service.FeedPublisher
	if rdb != nil {
		s.notifier = notifications.NewNotifier(rdb, s.featureFlags, log)
		s.feedHub = notifications.NewFeedHub(log)
		feed = s.notifier
	}

	s.userService = service.NewUserService(store.Users, tokens, log)
	s.profileService = service.NewProfileService(store.Profiles, store.Users, log)
	s.postService = service.NewPostService(store.Posts, store.Users, feed, log)
	return s
}

func isLocalEnv(env string) bool {
	switch strings.ToLower(env) {
	case "", "development", "dev", "test":
		return true
	}
	return false
}

// NewApp returns a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "DevHub API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Msg: fe.Message})
			}
			s.log.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger(s.log))

	// CORS runs before the limiter so rate-limited responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Auth-Token, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Msg:  "Too many requests, please try again later",
				Code: middleware.CodeRateLimited,
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	authRequired := s.guard.Required()

	api.Post("/users", s.limiter.Limit("register", 5, 10*time.Minute), s.Register)

	authRoutes := api.Group("/auth")
	authRoutes.Get("/", authRequired, s.GetAuthUser)
	authRoutes.Post("/", s.limiter.Limit("login", 10, 5*time.Minute), s.Login)
	authRoutes.Post("/logout", authRequired, s.Logout)

	profile := api.Group("/profile")
	profile.Get("/", s.GetProfiles)
	profile.Get("/user/:user_id", s.GetProfileByUser)
	profile.Get("/me", authRequired, s.GetMyProfile)
	profile.Post("/", authRequired, s.UpsertProfile)
	profile.Delete("/", authRequired, s.DeleteAccount)
	profile.Put("/experience", authRequired, s.AddExperience)
	profile.Delete("/experience/:exp_id", authRequired, s.RemoveExperience)
	profile.Put("/education", authRequired, s.AddEducation)
	profile.Delete("/education/:education_id", authRequired, s.RemoveEducation)

	posts := api.Group("/posts", authRequired)
	posts.Post("/", s.limiter.Limit("create_post", 10, time.Minute), s.CreatePost)
	posts.Get("/", s.GetPosts)
	// Specific routes before the generic /:id routes.
	posts.Put("/like/:id", s.LikePost)
	posts.Put("/unlike/:id", s.UnlikePost)
	posts.Put("/comment/:id", s.limiter.Limit("create_comment", 20, time.Minute), s.AddComment)
	posts.Delete("/comment/:id/:comment_id", s.RemoveComment)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)

	api.Get("/feature-flags", authRequired, s.GetFeatureFlags)

	ws := api.Group("/ws", authRequired)
	ws.Post("/ticket", s.IssueWSTicket)
	ws.Get("/feed", requireUpgrade, s.FeedWebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the store and Redis answer.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if s.store == nil || s.store.Ping == nil {
		storeStatus = "unavailable"
	} else if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	// Redis is optional; its absence degrades features but not readiness.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"driver": s.config.StoreDriver,
		"time":   time.Now(),
	})
}

// Start wires the feed hub and serves HTTP until the app is shut down.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.feedHub != nil {
		if err := s.feedHub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			s.log.Error("failed to start feed hub wiring", slog.String("error", err.Error()))
		}
	}

	s.log.Info("server starting", slog.String("port", s.config.Port), slog.String("store", s.config.StoreDriver))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			s.log.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.feedHub != nil {
		if err := s.feedHub.Shutdown(ctx); err != nil {
			s.log.Error("error shutting down feed hub", slog.String("error", err.Error()))
		}
	}

	if s.runtime != nil {
		if err := s.runtime.Close(ctx); err != nil {
			return fmt.Errorf("close runtime: %w", err)
		}
	}

	s.log.Info("server shutdown complete")
	return nil
}
