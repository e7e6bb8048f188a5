package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/cbr-exchange-rate/internal/application/service"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/api"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/config"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/db"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/handler"
	"github.com/damon-houk/cbr-exchange-rate/internal/infrastructure/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.GetDefaultLogger().Fatal("Failed to load configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)

	log.Info("Starting CBR exchange rate service", map[string]interface{}{
		"port":     cfg.Port,
		"feed":     cfg.CBRBaseURL,
		"timezone": cfg.Location.String(),
	})

	// Setup BadgerDB
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal("Failed to create database directory", map[string]interface{}{
			"path":  cfg.DataDir,
			"error": err.Error(),
		})
	}

	badgerDB, err := db.Open(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to open database", map[string]interface{}{
			"path":  cfg.DataDir,
			"error": err.Error(),
		})
	}

	defer func() {
		if err := badgerDB.Close(); err != nil {
			log.Error("Error closing BadgerDB", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Initialize repositories and clients
	lookupRepo := db.NewBadgerLookupRepository(badgerDB)
	cbrAPI := api.NewCBRAPIClient(cfg.CBRBaseURL, &http.Client{Timeout: cfg.CBRTimeout})

	// Initialize services
	clock := func() time.Time { return time.Now().In(cfg.Location) }
	rateService := service.NewRateService(cbrAPI, clock)
	lookupService := service.NewLookupService(rateService, lookupRepo, log)

	// Initialize handlers
	rateHandler := handler.NewRateHandler(lookupService, cfg.DefaultCurrency, log)
	router := handler.NewRouter(rateHandler, log)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down", map[string]interface{}{"timeout": cfg.ShutdownTimeout.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
