package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"warmap-server/internal/alliance"
	"warmap-server/internal/building"
	"warmap-server/internal/middleware"
	"warmap-server/internal/player"
	"warmap-server/internal/prefs"
	"warmap-server/internal/reward"
	"warmap-server/internal/server"
	"warmap-server/internal/shared/config"
	"warmap-server/internal/shared/database"
	"warmap-server/internal/shared/logger"
	"warmap-server/internal/shared/redis"
	"warmap-server/internal/shared/store"
	"warmap-server/internal/stream"
	"warmap-server/internal/worldmap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using system environment variables")
	}

	if err := config.Init(); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := config.GlobalConfig

	logger.Init()
	log := slog.With("component", "main")

	db, err := database.Connect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	docStore := store.NewSQLStore(db, slog.Default())

	// Carry forward documents persisted under pre-rename keys.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()
	if err := docStore.MigrateLegacyKeys(startupCtx, []store.LegacyKeyMigration{
		{OldKey: building.LegacyStorageKey, NewKey: building.StorageKey},
		{OldKey: reward.LegacyStorageKey, NewKey: reward.StorageKey},
	}); err != nil {
		log.Error("Legacy key migration failed", "error", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	buildingService := building.NewService(
		building.NewRepository(docStore, slog.Default()),
		time.Now, rng, slog.Default(),
	)
	if err := buildingService.EnsureSeeded(startupCtx); err != nil {
		log.Error("Failed to seed building roster", "error", err)
		os.Exit(1)
	}

	allianceService := alliance.NewService(
		alliance.NewRepository(docStore, slog.Default()),
		time.Now, slog.Default(),
	)
	rewardService := reward.NewService(
		reward.NewRepository(docStore, slog.Default()),
		slog.Default(),
	)
	lookupClient := player.NewLookupClient(
		cfg.Lookup.APIURL, cfg.Lookup.Salt, cfg.Lookup.Timeout, time.Now,
	)
	playerService := player.NewService(
		player.NewRepository(docStore, slog.Default()),
		lookupClient,
		redisClient,
		cfg.Lookup.CacheTTL,
		cfg.Lookup.ImportsPerSec,
		cfg.Lookup.ImportBurst,
		slog.Default(),
	)
	prefsService := prefs.NewService(docStore, slog.Default())

	projection := worldmap.NewProjection(cfg.Map.WorldSize, worldmap.Point{
		X: cfg.Map.CenterX,
		Y: cfg.Map.CenterY,
	})

	hub := stream.NewHub(buildingService, cfg.Stream.TickInterval, time.Now)
	hubCtx, cancelHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	routes := server.NewRoutes(
		db,
		buildingService,
		allianceService,
		rewardService,
		playerService,
		prefsService,
		projection,
		hub,
		slog.Default(),
	)
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Enabled:           cfg.RateLimit.Enabled,
		TrustProxy:        cfg.RateLimit.TrustProxy,
	})
	corsMiddleware := middleware.NewCORS()

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server starting",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	cancelHub()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := rewardService.Close(shutdownCtx); err != nil {
		log.Warn("Failed to flush pending reward edits", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
