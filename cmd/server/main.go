package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"persona-service/internal/app"
	"persona-service/internal/config"
	"persona-service/internal/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := "configs/config.yml"
	if p := os.Getenv("PERSONA_CONFIG"); p != "" {
		configPath = p
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := app.NewLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting Persona Service...", zap.String("config", configPath))

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize service", zap.Error(err))
	}
	defer a.Close()

	// Initial snapshot; the server still starts so /api/reload can retry
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 4*cfg.RequestTimeout())
	snap, err := a.Service.Reload(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Error("Initial load failed", zap.Error(err))
	} else {
		logger.Info("Snapshot loaded",
			zap.String("snapshot_id", snap.ID),
			zap.Int("personas", len(snap.Personas)),
			zap.Int("conversations", len(snap.Conversations)))
	}

	// Setup Gin router
	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(handler.NewHandler(a.Service, logger), logger)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", serverAddr))

	// Graceful shutdown
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Persona Service is running", zap.String("port", cfg.Server.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
