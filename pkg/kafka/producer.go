package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patchanon/ticket-rush/pkg/retry"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig holds configuration for the producer
type ProducerConfig struct {
	Brokers        []string
	ClientID       string
	MaxRetries     int
	RetryInterval  time.Duration
	ProduceTimeout time.Duration
}

// Producer is a synchronous Kafka producer. Sends block until the broker
// acknowledges (acks=all) or the per-call timeout expires.
type Producer struct {
	client  *kgo.Client
	retrier *retry.Retrier
	timeout time.Duration
}

// NewProducer creates a new producer and verifies broker connectivity
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg.ProduceTimeout <= 0 {
		cfg.ProduceTimeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordPartitioner(kgo.ManualPartitioner()),
		kgo.ProducerLinger(10 * time.Millisecond),
		kgo.ProduceRequestTimeout(cfg.ProduceTimeout),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	return &Producer{
		client: client,
		retrier: retry.New(&retry.Config{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: cfg.RetryInterval,
		}),
		timeout: cfg.ProduceTimeout,
	}, nil
}

// Produce sends a message and waits for broker acknowledgement.
// Transient failures are retried with backoff; the overall call is
// bounded by the produce timeout per attempt.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	record := &kgo.Record{
		Topic:     msg.Topic,
		Key:       msg.Key,
		Value:     msg.Value,
		Partition: msg.Partition,
	}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	err := p.retrier.Do(ctx, func(ctx context.Context) error {
		sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return p.client.ProduceSync(sendCtx, record).FirstErr()
	})
	if err != nil {
		return fmt.Errorf("failed to produce to %s[%d]: %w", msg.Topic, msg.Partition, err)
	}

	return nil
}

// ProduceJSON marshals v and sends it as the message value
func (p *Producer) ProduceJSON(ctx context.Context, topic, key string, partition int32, v interface{}, headers map[string]string) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", topic, err)
	}

	return p.Produce(ctx, &Message{
		Topic:     topic,
		Key:       []byte(key),
		Value:     value,
		Partition: partition,
		Headers:   headers,
	})
}

// Close flushes and closes the producer
func (p *Producer) Close() {
	p.client.Close()
}
