// The reservation worker consumes every concert's order topic as a
// member of the processing group, decides each reservation in partition
// order, and publishes the verdict on the matching event topic. Scale it
// horizontally up to the total partition count.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/patchanon/ticket-rush/internal/di"
	"github.com/patchanon/ticket-rush/pkg/config"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "reservation-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Reservation Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.NewWorkerContainer(ctx, cfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build worker: %v", err))
	}

	container.Persister.Start()
	go container.Worker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down worker...")

	// Close stops the consumer first, then flushes the persister, so
	// every admitted ticket reaches the database before exit.
	container.Close()
	appLog.Info("Worker exited gracefully")
}
