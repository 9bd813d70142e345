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

	"github.com/gin-gonic/gin"

	"github.com/patchanon/ticket-rush/internal/bus"
	"github.com/patchanon/ticket-rush/internal/di"
	"github.com/patchanon/ticket-rush/pkg/config"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "ticket-api",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Ticket API...")

	ctx := context.Background()

	container, err := di.NewAPIContainer(ctx, cfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build application: %v", err))
	}
	defer container.Close()
	appLog.Info("Database, Redis and Kafka connected")

	if topics, err := container.Admin.ListTopics(ctx, bus.OrderTopicPrefix); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to list order topics: %v", err))
	} else {
		appLog.Info(fmt.Sprintf("Found %d provisioned concert order topics", len(topics)))
	}

	// The result consumer must be live before the first order is
	// accepted, or an early result could slip past the correlator.
	consumerCtx, consumerCancel := context.WithCancel(ctx)
	defer consumerCancel()
	go container.ResultConsumer.Start(consumerCtx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	container.HealthHandler.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": "ticket-api",
			})
		})

		container.TicketHandler.RegisterRoutes(v1)
		container.VenueHandler.RegisterRoutes(v1)
		container.ConcertHandler.RegisterRoutes(v1)
		container.ZoneHandler.RegisterRoutes(v1)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout must exceed the order timeout: a reservation
		// request holds its connection until the worker's verdict.
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		appLog.Info(fmt.Sprintf("Ticket API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
