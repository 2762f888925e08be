package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lucky-draw-backend/internal/common/config"
	"lucky-draw-backend/internal/common/logger"
	"lucky-draw-backend/internal/common/metrics"
	"lucky-draw-backend/internal/common/middleware"
	"lucky-draw-backend/internal/features/draw/engine"
	"lucky-draw-backend/internal/features/draw/models"
	drawservice "lucky-draw-backend/internal/features/draw/service"
	ledgerservice "lucky-draw-backend/internal/features/ledger/service"
)

// @title           Lucky Draw API
// @version         1.0
// @description     Daily deposit lucky draw: weighted prize wheel and entry ledger.
// @BasePath        /api/v1
// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logger.Init(cfg.ServiceName, cfg.Debug)
	logger.Info().
		Bool("debug", cfg.Debug).
		Str("store", cfg.Store.Driver).
		Str("proof", cfg.Proof.Driver).
		Str("timezone", cfg.Ledger.Timezone).
		Msg("Starting lucky draw backend")

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid ledger timezone")
	}

	eng, err := engine.New(models.DefaultPrizeTable(), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("Prize table rejected")
	}

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open ledger store")
	}
	defer repo.Close()

	proofs, err := openProofStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Proof.Driver).Msg("Failed to set up proof store")
	}

	ledger := ledgerservice.NewLedgerService(repo, ledgerservice.Options{
		Location:   loc,
		TodayLimit: cfg.Ledger.TodayLimit,
		AllLimit:   cfg.Ledger.AllLimit,
		Tiers:      models.TierNames(),
	})
	draws := drawservice.NewDrawService(eng, ledger, proofs, drawservice.Options{
		OncePerDay: cfg.Ledger.OncePerDay,
	})

	limiter := middleware.NewRateLimiter("draws", cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	limiter.StartCleanup(ctx, time.Minute, 10*time.Minute)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(metrics.GinMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", middleware.AdminTokenHeader, "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, cfg, draws, ledger, limiter.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
