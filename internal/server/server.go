// Package server contains the HTTP handlers and middleware for the blog API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "inkwell/docs" // swagger docs
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/events"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// actorKey holds the service.Actor resolved by AuthRequired.
const actorKey = "actor"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	publisher      *events.Publisher

	userService      *service.UserService
	blogService      *service.BlogService
	commentService   *service.CommentService
	feedService      *service.FeedService
	dashboardService *service.DashboardService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	service.ConfigurePaging(cfg.DefaultPageSize, cfg.MaxPageSize)
	publisher := events.NewPublisher(redisClient)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkwell-api"),
		publisher:      publisher,
	}
	server.userService = service.NewUserService(userRepo, publisher, cfg.JWTSecret, cfg.JWTExpiry())
	server.blogService = service.NewBlogService(blogRepo, commentRepo, publisher)
	server.commentService = service.NewCommentService(commentRepo, blogRepo, publisher)
	server.feedService = service.NewFeedService(blogRepo, server.blogService)
	server.dashboardService = service.NewDashboardService(statsRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before the context middleware so trace_id reaches log records.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	globalLimit := s.config.GlobalRateLimit
	if globalLimit <= 0 {
		globalLimit = 100
	}
	app.Use(limiter.New(limiter.Config{
		Max:        globalLimit,
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)

	blogs := api.Group("/blogs")
	blogs.Get("/", s.GetBlogs)
	// Specific routes before the generic /:id route
	blogs.Get("/trending", s.GetTrendingBlogs)
	blogs.Get("/:id", s.GetBlog)
	blogs.Post("/", s.AuthRequired(),
		middleware.RateLimit(s.redis, s.limitOr(s.config.BlogRateLimit, 5), 10*time.Minute, "create_blog"), s.CreateBlog)
	blogs.Put("/:id", s.AuthRequired(), s.UpdateBlog)
	blogs.Post("/:id/submit", s.AuthRequired(), s.SubmitBlog)
	blogs.Post("/:id/like", s.AuthRequired(), s.ToggleLike)
	blogs.Delete("/:id", s.AuthRequired(), s.DeleteBlog)

	comments := api.Group("/comments")
	comments.Get("/blog/:blogId", s.GetBlogComments)
	comments.Get("/me", s.AuthRequired(), s.GetMyComments)
	comments.Get("/:id/replies", s.GetReplies)
	comments.Post("/", s.AuthRequired(),
		middleware.RateLimit(s.redis, s.limitOr(s.config.CommentRateLimit, 10), time.Minute, "create_comment"), s.CreateComment)
	comments.Post("/:id/report", s.AuthRequired(), s.ReportComment)
	comments.Put("/:id", s.AuthRequired(), s.UpdateComment)
	comments.Delete("/:id", s.AuthRequired(), s.DeleteComment)

	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/blogs/pending", s.GetPendingBlogs)
	admin.Put("/blogs/:id/approve", s.ApproveBlog)
	admin.Put("/blogs/:id/reject", s.RejectBlog)
	admin.Put("/blogs/:id/hide", s.HideBlog)
	admin.Put("/blogs/:id/restore", s.RestoreBlog)
	admin.Get("/comments/reported", s.GetReportedComments)
	admin.Get("/users", s.GetUsers)
	admin.Put("/users/:id/toggle-status", s.ToggleUserStatus)
	admin.Get("/analytics", s.GetAnalytics)
}

func (s *Server) limitOr(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: the
// cache and rate limits degrade without it.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !actor(c).IsAdmin() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// AuthRequired returns the authentication middleware. It verifies the bearer
// token, rejects revoked tokens and loads the user, who must still be active.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		userID, err := subjectID(claims)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		if s.isRevoked(c.UserContext(), claims) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		user, err := s.userService.Resolve(c.UserContext(), userID)
		if err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("User no longer exists"))
			}
			return respondError(c, err)
		}
		if !user.IsActive {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account is deactivated"))
		}

		c.Locals("userID", user.ID)
		c.Locals("claims", claims)
		c.Locals(actorKey, service.ActorFor(user))
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))

		return c.Next()
	}
}

// viewer resolves the optional identity of a public request. Invalid or
// revoked tokens and inactive users read anonymously.
func (s *Server) viewer(c *fiber.Ctx) service.Actor {
	userID, ok := s.optionalUserID(c)
	if !ok {
		return service.Actor{}
	}
	user, err := s.userService.Resolve(c.UserContext(), userID)
	if err != nil || !user.IsActive {
		return service.Actor{}
	}
	return service.ActorFor(user)
}

// optionalUserID attempts to extract userID from Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return 0, false
	}
	claims, err := s.parseToken(tokenString)
	if err != nil || s.isRevoked(c.UserContext(), claims) {
		return 0, false
	}
	userID, err := subjectID(claims)
	if err != nil {
		return 0, false
	}
	return userID, true
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// parseToken validates signature, expiry, issuer and audience.
func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(service.TokenIssuer),
		jwt.WithAudience(service.TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (uint, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}
	return uint(id), nil
}

func revocationKey(jti string) string {
	return "blacklist:" + jti
}

// isRevoked checks the token's jti against the Redis blacklist. Without
// Redis no token is considered revoked.
func (s *Server) isRevoked(ctx context.Context, claims jwt.MapClaims) bool {
	jti, _ := claims["jti"].(string)
	if jti == "" || s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, revocationKey(jti)).Result()
	return err == nil && n > 0
}

// newApp builds the Fiber app with middleware and routes.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Inkwell API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.newApp()

	if err := s.publisher.Subscribe(s.shutdownCtx, func(evt events.Event) {
		middleware.Logger.Debug("moderation event",
			slog.String("type", evt.Type),
			slog.Uint64("resource_id", uint64(evt.ResourceID)))
	}); err != nil {
		middleware.Logger.Warn("failed to subscribe to moderation events", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
