// Package main provides the HTTP server for the churn prediction engine.
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

	"github.com/rs/cors"
	"go.uber.org/zap"

	"churn-prediction-engine/internal/bootstrap"
	"churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/handlers"
	"churn-prediction-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The model must be loaded before the server accepts requests.
	rt, err := bootstrap.NewRuntime(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load churn model", zap.Error(err))
	}
	defer rt.Close()

	router := handlers.NewRouter(rt.Service, rt.HealthHandler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Churn prediction API listening",
			zap.String("addr", srv.Addr),
			zap.String("model", rt.Service.ModelName()),
			zap.String("model_version", rt.Service.ModelVersion()),
			zap.Float64("threshold", rt.Service.Threshold()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
