package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/campustrack/backend/internal/locks"
	"github.com/anonto42/campustrack/backend/internal/metrics"
	"github.com/anonto42/campustrack/backend/internal/middleware"
	"github.com/anonto42/campustrack/backend/internal/repositories"
	"github.com/anonto42/campustrack/backend/internal/repositories/memory"
	"github.com/anonto42/campustrack/backend/internal/router"
	"github.com/anonto42/campustrack/backend/internal/services"
	"github.com/anonto42/campustrack/backend/internal/storage"
	"github.com/anonto42/campustrack/backend/pkg/config"
	"github.com/anonto42/campustrack/backend/pkg/firebase"
	"github.com/anonto42/campustrack/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{Development: cfg.IsDevelopment(), Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	deps, err := buildDependencies(ctx, cfg, db, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	svc := services.New(deps, services.Options{
		JWTSecret:   []byte(cfg.JWTSecret),
		TokenTTL:    cfg.TokenTTL,
		AdminEmails: cfg.AdminEmails,
	})

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	config.SetupMiddleware(e, cfg, zlog)

	// Setup routes and dependencies
	router.SetupRoutes(e, svc, router.Options{
		JWTSecret:     []byte(cfg.JWTSecret),
		AuthRateLimit: authRateLimit(cfg, db, zlog),
		Logger:        zlog,
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// Start server
	go func() {
		zlog.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("metrics server shutdown failed", zap.Error(err))
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config, db *config.DB, zlog *zap.Logger) (services.Dependencies, error) {
	deps := services.Dependencies{Logger: zlog}

	switch cfg.DBDriver {
	case "mongo":
		mdb := db.Mongo.Database(cfg.MongoDB)
		users := repositories.NewMongoUserRepository(mdb)
		posts := repositories.NewMongoPostRepository(mdb)
		comments := repositories.NewMongoCommentRepository(mdb)
		notifications := repositories.NewMongoNotificationRepository(mdb)

		indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		for name, ensure := range map[string]func(context.Context) error{
			"users":         users.EnsureIndexes,
			"posts":         posts.EnsureIndexes,
			"comments":      comments.EnsureIndexes,
			"notifications": notifications.EnsureIndexes,
		} {
			if err := ensure(indexCtx); err != nil {
				return deps, fmt.Errorf("ensure %s indexes: %w", name, err)
			}
		}

		deps.Users, deps.Posts, deps.Comments, deps.Notifications = users, posts, comments, notifications
		if cfg.MongoTransactions {
			deps.Tx = repositories.NewMongoTxRunner(db.Mongo)
			zlog.Info("MongoDB transactions enabled")
		}
	default:
		store := memory.NewStore()
		deps.Users, deps.Posts, deps.Comments, deps.Notifications = store.Users(), store.Posts(), store.Comments(), store.Notifications()
		zlog.Warn("using in-memory repositories, data is lost on restart")
	}

	switch {
	case db.Postgres != nil:
		audit := repositories.NewPostgresAuditRepository(db.Postgres)
		if err := audit.Migrate(); err != nil {
			return deps, fmt.Errorf("migrate audit log: %w", err)
		}
		deps.Audit = audit
	case cfg.DBDriver == "memory":
		deps.Audit = &memory.AuditRepository{}
	}

	blobs, err := buildBlobStore(ctx, cfg, zlog)
	if err != nil {
		return deps, err
	}
	deps.Blobs = storage.NewInstrumented(blobs)

	if db.Redis != nil {
		deps.Locker = locks.NewRedisLocker(db.Redis, cfg.LockTTL, zlog)
	} else {
		deps.Locker = locks.NewMemoryLocker()
	}
	return deps, nil
}

func buildBlobStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (storage.BlobStore, error) {
	switch cfg.BlobBackend {
	case "firebase":
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseBucket, zlog)
		if err != nil {
			return nil, fmt.Errorf("initialize firebase: %w", err)
		}
		return storage.NewFirebaseStore(app.Bucket, app.BucketName), nil
	case "memory":
		zlog.Warn("using in-memory blob store, uploads are lost on restart")
		return storage.NewMemoryStore("http://localhost:" + cfg.Port + "/blobs"), nil
	default:
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize s3: %w", err)
		}
		return store, nil
	}
}

func authRateLimit(cfg *config.Config, db *config.DB, zlog *zap.Logger) echo.MiddlewareFunc {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	if db.Redis != nil {
		return middleware.NewRateLimiter(db.Redis, "campustrack:ratelimit:auth", cfg.RateLimitPerMinute, time.Minute, zlog).Middleware()
	}
	return middleware.MemoryRateLimit(cfg.RateLimitPerMinute)
}
