package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lucky-draw-backend/internal/common/config"
	"lucky-draw-backend/internal/common/metrics"
	drawhttp "lucky-draw-backend/internal/features/draw/delivery/http"
	drawservice "lucky-draw-backend/internal/features/draw/service"
	ledgerhttp "lucky-draw-backend/internal/features/ledger/delivery/http"
	ledgerservice "lucky-draw-backend/internal/features/ledger/service"
)

func setupRoutes(router *gin.Engine, cfg *config.Config, draws drawservice.DrawService, ledger ledgerservice.LedgerService, drawLimiter gin.HandlerFunc) {
	v1 := router.Group("/api/v1")
	drawhttp.NewDrawHandler(draws, cfg.Proof.MaxBytes, drawLimiter).RegisterRoutes(v1)
	ledgerhttp.NewLedgerHandler(ledger, cfg.Admin.Token, cfg.Ledger.AllLimit).RegisterRoutes(v1)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   cfg.ServiceName,
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := ledger.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "ledger store unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   cfg.ServiceName,
			"store":     cfg.Store.Driver,
		})
	})
}
