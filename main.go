package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/hourbook/hourbook/pkg/auth"
	"github.com/hourbook/hourbook/pkg/config"
	"github.com/hourbook/hourbook/pkg/database"
	"github.com/hourbook/hourbook/pkg/handlers"
	"github.com/hourbook/hourbook/pkg/logging"
	"github.com/hourbook/hourbook/pkg/middleware"
	"github.com/hourbook/hourbook/pkg/repositories"
	"github.com/hourbook/hourbook/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Host),
		zap.String("redis", cfg.Redis.Host),
		zap.String("policy_storage", cfg.Policy.StorageDir))

	ctx := context.Background()

	// Migrations run over database/sql; the pool below uses pgx natively.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Info("Redis not configured, dashboard cache disabled")
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	auth.InitSessionStore(cfg.Auth.Secret)

	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	timeLogRepo := repositories.NewTimeLogRepository(db)
	policyRepo := repositories.NewPolicyRepository(db)

	tokenIssuer := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())
	jwksClient, err := auth.NewJWKSClient(cfg.Auth.JWKSEndpoints())
	if err != nil {
		logger.Fatal("Failed to initialize JWKS client", zap.Error(err))
	}

	authService := auth.NewAuthService(tokenIssuer, jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	bus := services.NewChangeBus()
	identityService := services.NewIdentityService(userRepo, tokenIssuer, cfg.Auth.ParentPIN, logger)
	projectService := services.NewProjectService(projectRepo, bus, logger)
	timeLogService := services.NewTimeLogService(timeLogRepo, projectRepo, userRepo, bus, logger)
	analyticsService := services.NewAnalyticsService(projectRepo, timeLogRepo, redisClient, logger)
	policyService := services.NewPolicyService(policyRepo, cfg.Policy.StorageDir, logger)
	userService := services.NewUserService(userRepo, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(identityService, cfg, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewProjectsHandler(projectService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewTimeLogsHandler(timeLogService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAnalyticsHandler(analyticsService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPoliciesHandler(policyService, cfg, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewUsersHandler(userService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewEventsHandler(bus, logger).RegisterRoutes(mux, authMiddleware)

	var handler http.Handler = mux
	handler = middleware.StoreTimeout(cfg.StoreTimeout(), "/api/events")(handler)
	handler = middleware.RequestLogger(logger)(handler)

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		logger.Info("Starting hourbook",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
