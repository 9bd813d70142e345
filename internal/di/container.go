// Package di wires the application graph for both binaries: the API
// container for the HTTP process and the worker container for the
// reservation processor. Construction order is connectivity first, so a
// process fails fast when a dependency is unreachable.
package di

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/patchanon/ticket-rush/internal/bus"
	"github.com/patchanon/ticket-rush/internal/cache"
	"github.com/patchanon/ticket-rush/internal/correlator"
	"github.com/patchanon/ticket-rush/internal/handler"
	"github.com/patchanon/ticket-rush/internal/repository"
	"github.com/patchanon/ticket-rush/internal/service"
	"github.com/patchanon/ticket-rush/internal/worker"
	"github.com/patchanon/ticket-rush/pkg/config"
	"github.com/patchanon/ticket-rush/pkg/database"
	"github.com/patchanon/ticket-rush/pkg/kafka"
	"github.com/patchanon/ticket-rush/pkg/redis"
)

// APIContainer holds the API process's dependency graph
type APIContainer struct {
	Config *config.Config

	DB    *database.PostgresDB
	Redis *redis.Client
	Cache *cache.Cache

	Producer       *bus.TicketProducer
	ResultConsumer *bus.ResultConsumer
	Correlator     *correlator.Correlator
	Admin          *kafka.Admin

	TicketHandler  *handler.TicketHandler
	VenueHandler   *handler.VenueHandler
	ConcertHandler *handler.ConcertHandler
	ZoneHandler    *handler.ZoneHandler
	HealthHandler  *handler.HealthHandler
}

// NewAPIContainer builds the API dependency graph
func NewAPIContainer(ctx context.Context, cfg *config.Config) (*APIContainer, error) {
	c := &APIContainer{Config: cfg}

	var err error
	c.DB, err = newDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c.Redis, err = newRedis(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Cache = cache.New(c.Redis, cfg.Ticketing.ResultCacheTTL)

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:        cfg.Kafka.BootstrapServers,
		ClientID:       cfg.Kafka.ClientID + "-api",
		ProduceTimeout: cfg.Ticketing.ProduceTimeout,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	c.Producer = bus.NewTicketProducer(producer)

	c.Admin, err = kafka.NewAdmin(ctx, &kafka.AdminConfig{
		Brokers:  cfg.Kafka.BootstrapServers,
		ClientID: cfg.Kafka.ClientID + "-admin",
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create kafka admin: %w", err)
	}

	// Every API replica consumes every event topic in its own group so
	// each replica sees all results; the correlator matches the ones
	// this replica is waiting on.
	resultConsumer, err := kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
		Brokers:  cfg.Kafka.BootstrapServers,
		GroupID:  fmt.Sprintf("%s-results-%s", cfg.Kafka.ConsumerGroup, instanceID()),
		ClientID: cfg.Kafka.ClientID + "-results",
		Topics:   []string{bus.EventTopicPattern},
		Regex:    true,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create result consumer: %w", err)
	}

	c.Correlator = correlator.New(correlator.WithReplay(c.Cache))
	c.ResultConsumer = bus.NewResultConsumer(resultConsumer, c.Correlator, c.Cache, &bus.ResultConsumerConfig{
		ReplayTTL: cfg.Ticketing.ResultCacheTTL,
	})

	venueRepo := repository.NewPostgresVenueRepository(c.DB)
	concertRepo := repository.NewCachedConcertRepository(repository.NewPostgresConcertRepository(c.DB), c.Cache)
	zoneRepo := repository.NewCachedZoneRepository(repository.NewPostgresZoneRepository(c.DB), c.Cache)
	ticketRepo := repository.NewPostgresTicketRepository(c.DB)

	topicManager := bus.NewTopicManager(c.Admin, cfg.Kafka.ReplicationFactor)

	venueService := service.NewVenueService(venueRepo)
	concertService := service.NewConcertService(concertRepo, venueRepo, topicManager)
	zoneService := service.NewZoneService(zoneRepo, concertRepo)
	ticketService := service.NewTicketService(
		ticketRepo, zoneRepo, concertRepo, c.Producer, c.Correlator, c.Cache, cfg.Ticketing.OrderTimeout)

	c.TicketHandler = handler.NewTicketHandler(ticketService)
	c.VenueHandler = handler.NewVenueHandler(venueService, concertService)
	c.ConcertHandler = handler.NewConcertHandler(concertService, zoneService)
	c.ZoneHandler = handler.NewZoneHandler(zoneService)
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)

	return c, nil
}

// Close releases the container's resources in reverse dependency order
func (c *APIContainer) Close() {
	if c.ResultConsumer != nil {
		c.ResultConsumer.Stop()
	}
	if c.Producer != nil {
		c.Producer.Close()
	}
	if c.Admin != nil {
		c.Admin.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}

// WorkerContainer holds the reservation worker's dependency graph
type WorkerContainer struct {
	Config *config.Config

	DB    *database.PostgresDB
	Redis *redis.Client
	Cache *cache.Cache

	Producer  *bus.TicketProducer
	Persister *worker.BatchPersister
	Worker    *worker.ReservationWorker
}

// NewWorkerContainer builds the worker dependency graph
func NewWorkerContainer(ctx context.Context, cfg *config.Config) (*WorkerContainer, error) {
	c := &WorkerContainer{Config: cfg}

	var err error
	c.DB, err = newDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c.Redis, err = newRedis(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Cache = cache.New(c.Redis, cfg.Ticketing.ResultCacheTTL)

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:        cfg.Kafka.BootstrapServers,
		ClientID:       cfg.Kafka.ClientID + "-worker",
		ProduceTimeout: cfg.Ticketing.ProduceTimeout,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	c.Producer = bus.NewTicketProducer(producer)

	// All workers share one group so each order partition has exactly
	// one consumer.
	consumer, err := kafka.NewConsumer(ctx, &kafka.ConsumerConfig{
		Brokers:  cfg.Kafka.BootstrapServers,
		GroupID:  cfg.Kafka.ConsumerGroup,
		ClientID: cfg.Kafka.ClientID + "-worker",
		Topics:   []string{bus.OrderTopicPattern},
		Regex:    true,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create order consumer: %w", err)
	}

	ticketRepo := repository.NewPostgresTicketRepository(c.DB)
	zoneRepo := repository.NewCachedZoneRepository(repository.NewPostgresZoneRepository(c.DB), c.Cache)
	concertRepo := repository.NewCachedConcertRepository(repository.NewPostgresConcertRepository(c.DB), c.Cache)

	c.Persister = worker.NewBatchPersister(ticketRepo, worker.BatchPersisterConfig{
		BatchSize:    cfg.Ticketing.BatchSize,
		BatchTimeout: cfg.Ticketing.BatchTimeout,
	})

	c.Worker = worker.NewReservationWorker(
		consumer, zoneRepo, concertRepo, c.Persister, c.Producer, c.Cache)

	return c, nil
}

// Close releases the container's resources. The worker is stopped before
// the persister so every admitted ticket reaches the final flush.
func (c *WorkerContainer) Close() {
	if c.Worker != nil {
		c.Worker.Stop()
	}
	if c.Persister != nil {
		c.Persister.Stop()
	}
	if c.Producer != nil {
		c.Producer.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}

// instanceID distinguishes each API replica's result consumer group so
// every replica receives the full event stream
func instanceID() string {
	return uuid.NewString()[:8]
}

func newDatabase(ctx context.Context, cfg *config.Config) (*database.PostgresDB, error) {
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		DSN:             cfg.Database.DSN(),
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client, err := redis.NewClient(ctx, &redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
