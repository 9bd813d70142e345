package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithPath("nonexistent.env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "ticket-rush" {
		t.Errorf("unexpected app name: %s", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("unexpected server port: %d", cfg.Server.Port)
	}
	if cfg.Kafka.ConsumerGroup != "ticket-processor" {
		t.Errorf("unexpected consumer group: %s", cfg.Kafka.ConsumerGroup)
	}
	if cfg.Ticketing.BatchSize != 100 {
		t.Errorf("unexpected batch size: %d", cfg.Ticketing.BatchSize)
	}
	if cfg.Ticketing.OrderTimeout != 30*time.Second {
		t.Errorf("unexpected order timeout: %s", cfg.Ticketing.OrderTimeout)
	}
	if cfg.Ticketing.ResultCacheTTL != time.Hour {
		t.Errorf("unexpected result cache ttl: %s", cfg.Ticketing.ResultCacheTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("BATCH_SIZE", "250")
	t.Setenv("ORDER_TIMEOUT", "45s")

	cfg, err := LoadWithPath("nonexistent.env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Kafka.BootstrapServers) != 2 || cfg.Kafka.BootstrapServers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Kafka.BootstrapServers)
	}
	if cfg.Ticketing.BatchSize != 250 {
		t.Errorf("expected batch size 250, got %d", cfg.Ticketing.BatchSize)
	}
	if cfg.Ticketing.OrderTimeout != 45*time.Second {
		t.Errorf("expected 45s order timeout, got %s", cfg.Ticketing.OrderTimeout)
	}
}

func TestTicketingDurationsAcceptBareSeconds(t *testing.T) {
	t.Setenv("BATCH_TIMEOUT", "5")
	t.Setenv("ORDER_TIMEOUT", "45")
	t.Setenv("RESULT_CACHE_TTL", "2.5")

	cfg, err := LoadWithPath("nonexistent.env")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Ticketing.BatchTimeout != 5*time.Second {
		t.Errorf("BATCH_TIMEOUT=5 must mean 5s, got %s", cfg.Ticketing.BatchTimeout)
	}
	if cfg.Ticketing.OrderTimeout != 45*time.Second {
		t.Errorf("ORDER_TIMEOUT=45 must mean 45s, got %s", cfg.Ticketing.OrderTimeout)
	}
	if cfg.Ticketing.ResultCacheTTL != 2500*time.Millisecond {
		t.Errorf("RESULT_CACHE_TTL=2.5 must mean 2.5s, got %s", cfg.Ticketing.ResultCacheTTL)
	}
	if cfg.Ticketing.ProduceTimeout != 10*time.Second {
		t.Errorf("default PRODUCE_TIMEOUT must stay 10s, got %s", cfg.Ticketing.ProduceTimeout)
	}
}

func TestDatabaseDSNPrecedence(t *testing.T) {
	d := DatabaseConfig{
		URL:  "postgres://user:pass@db:5432/tickets",
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "postgres", DBName: "ticket_rush", SSLMode: "disable",
	}
	if d.DSN() != "postgres://user:pass@db:5432/tickets" {
		t.Errorf("DATABASE_URL must take precedence, got %s", d.DSN())
	}

	d.URL = ""
	want := "host=localhost port=5432 user=postgres password=postgres dbname=ticket_rush sslmode=disable"
	if d.DSN() != want {
		t.Errorf("unexpected DSN: %s", d.DSN())
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")
	if _, err := LoadWithPath("nonexistent.env"); err == nil {
		t.Error("expected validation error for port 0")
	}
}
