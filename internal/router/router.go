package router

import (
	"github.com/anonto42/campustrack/backend/internal/handlers"
	"github.com/anonto42/campustrack/backend/internal/middleware"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/anonto42/campustrack/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Options carries what the routes need besides the services
type Options struct {
	JWTSecret []byte
	// AuthRateLimit guards register and login. Nil disables limiting.
	AuthRateLimit echo.MiddlewareFunc
	Logger        *zap.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, svc *services.Services, opts Options) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	limit := opts.AuthRateLimit
	if limit == nil {
		limit = passThrough
	}

	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(log)

	requireAuth := middleware.JWTAuthMiddleware(opts.JWTSecret)
	optionalAuth := middleware.OptionalJWTMiddleware(opts.JWTSecret, log)

	api := e.Group("/api")

	// Health check - always accessible
	api.GET("/health", handlers.HealthCheck)

	handlers.NewAuthHandler(svc.Auth).RegisterAuthRoutes(api.Group("/auth"), requireAuth, limit)
	handlers.NewUserHandler(svc.Users).RegisterUserRoutes(api.Group("/user"), requireAuth, optionalAuth)
	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(api.Group("/post"), requireAuth)
	handlers.NewCommentHandler(svc.Comments).RegisterCommentRoutes(api.Group("/comment"), requireAuth)

	// --- Protected routes (require JWT authentication) ---
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api.Group("/notification", requireAuth))
	handlers.NewAdminHandler(svc.Admin).RegisterAdminRoutes(api.Group("/admin", requireAuth))
	handlers.NewUploadHandler(svc.Uploads).RegisterUploadRoutes(api.Group("/upload", requireAuth))

	log.Info("routes configured", zap.Int("count", len(e.Routes())))
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
