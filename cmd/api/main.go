package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/bazaar-backend/api/controllers"
	"github.com/angelmondragon/bazaar-backend/api/routes"
	"github.com/angelmondragon/bazaar-backend/internal/admin"
	"github.com/angelmondragon/bazaar-backend/internal/auth"
	"github.com/angelmondragon/bazaar-backend/internal/banners"
	"github.com/angelmondragon/bazaar-backend/internal/categories"
	"github.com/angelmondragon/bazaar-backend/internal/likes"
	product "github.com/angelmondragon/bazaar-backend/internal/products"
	"github.com/angelmondragon/bazaar-backend/internal/taxonomy"
	"github.com/angelmondragon/bazaar-backend/internal/users"
	"github.com/angelmondragon/bazaar-backend/pkg/auth/session"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/google"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
	"github.com/angelmondragon/bazaar-backend/pkg/migrate"
	"github.com/angelmondragon/bazaar-backend/pkg/redis"
	"github.com/angelmondragon/bazaar-backend/pkg/storage"
	"github.com/angelmondragon/bazaar-backend/pkg/storage/gcs"
	"github.com/angelmondragon/bazaar-backend/pkg/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(fmt.Errorf("bootstrap redis: %w", err), dbClient.Close())
	}
	defer func() {
		err = multierr.Combine(err, redisClient.Close(), dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	uploader, err := newUploader(ctx, cfg.Storage, logg)
	if err != nil {
		return fmt.Errorf("bootstrap storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildDependencies(cfg, logg, dbClient, redisClient, uploader, reg)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Provider,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildDependencies(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	uploader storage.Uploader,
	reg *prometheus.Registry,
) (routes.Dependencies, error) {
	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("session manager: %w", err)
	}

	userRepo := users.NewRepository(dbClient.DB())
	userService, err := users.NewService(users.ServiceParams{
		Repo:      userRepo,
		DB:        dbClient,
		Storage:   uploader,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Logger:    logg,
	})
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("users service: %w", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       userRepo,
		Profiles:       userService,
		SessionManager: sessionManager,
		Google:         google.NewIDTokenVerifier(cfg.Google.ClientID),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("auth service: %w", err)
	}

	engine := taxonomy.NewEngine(logg, metrics.NewTaxonomyMetrics(reg))
	productService, err := product.NewService(product.ServiceParams{
		Repo:    product.NewRepository(dbClient.DB()),
		DB:      dbClient,
		Engine:  engine,
		Sellers: userRepo,
		Logger:  logg,
	})
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("product service: %w", err)
	}

	likeService, err := likes.NewService(likes.ServiceParams{
		Repo:     likes.NewRepository(dbClient.DB()),
		DB:       dbClient,
		Products: productService,
		Logger:   logg,
	})
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("likes service: %w", err)
	}

	categoryService, err := categories.NewService(categories.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("categories service: %w", err)
	}

	bannerService, err := banners.NewService(banners.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("banners service: %w", err)
	}

	taxonomyService, err := admin.NewTaxonomyService(dbClient, logg)
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("taxonomy service: %w", err)
	}

	return routes.Dependencies{
		Sessions:    sessionManager,
		RateLimiter: redisClient,
		Ready: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"storage":  uploader,
		},
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Auth:        authService,
		Users:       userService,
		Products:    productService,
		Likes:       likeService,
		Categories:  categoryService,
		Banners:     bannerService,
		Taxonomy:    taxonomyService,
	}, nil
}

func newUploader(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (storage.Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.StorageProviderS3:
		return s3.NewClient(cfg)
	default:
		return gcs.NewClient(ctx, cfg, logg)
	}
}
