package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/patchanon/ticket-rush/pkg/logger"
)

// ConsumerConfig holds configuration for a consumer-group consumer
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	ClientID string

	// Topics to consume. With Regex set, entries are treated as regular
	// expressions; newly created topics matching an expression are picked
	// up on metadata refresh.
	Topics []string
	Regex  bool

	SessionTimeout   time.Duration
	RebalanceTimeout time.Duration
}

// Consumer is a consumer-group member with explicit offset commits.
// Within a partition, Poll returns records in offset order.
type Consumer struct {
	client *kgo.Client
	log    *logger.Logger
}

// NewConsumer creates a new consumer and verifies broker connectivity
func NewConsumer(ctx context.Context, cfg *ConsumerConfig) (*Consumer, error) {
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.RebalanceTimeout <= 0 {
		cfg.RebalanceTimeout = 60 * time.Second
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.ClientID(cfg.ClientID),
		kgo.DisableAutoCommit(),
		kgo.SessionTimeout(cfg.SessionTimeout),
		kgo.RebalanceTimeout(cfg.RebalanceTimeout),
	}
	if cfg.Regex {
		opts = append(opts, kgo.ConsumeRegex())
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	return &Consumer{client: client, log: logger.Get()}, nil
}

// Poll fetches the next batch of records. Returns ErrClientClosed once
// the consumer is closed. A fetch error on one partition does not discard
// records fetched from healthy partitions in the same poll: those records
// are returned and the error is logged, so per-partition broker hiccups
// never stall the other partitions.
func (c *Consumer) Poll(ctx context.Context) ([]*Record, error) {
	fetches := c.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return nil, ErrClientClosed
	}

	records, fetchErrs := splitFetches(fetches)
	for _, fe := range fetchErrs {
		if errors.Is(fe.Err, context.Canceled) || errors.Is(fe.Err, context.DeadlineExceeded) {
			continue
		}
		c.log.Warn(fmt.Sprintf("Fetch error on %s[%d]: %v", fe.Topic, fe.Partition, fe.Err))
	}

	return records, nil
}

// splitFetches separates a poll result into the records from healthy
// partitions and the per-partition fetch errors.
func splitFetches(fetches kgo.Fetches) ([]*Record, []kgo.FetchError) {
	var (
		records   []*Record
		fetchErrs []kgo.FetchError
	)
	for _, fetch := range fetches {
		for _, topic := range fetch.Topics {
			for _, partition := range topic.Partitions {
				if partition.Err != nil {
					fetchErrs = append(fetchErrs, kgo.FetchError{
						Topic:     topic.Topic,
						Partition: partition.Partition,
						Err:       partition.Err,
					})
					continue
				}
				for _, r := range partition.Records {
					records = append(records, fromKgoRecord(r))
				}
			}
		}
	}
	return records, fetchErrs
}

// CommitRecords commits the offsets of the given records
func (c *Consumer) CommitRecords(ctx context.Context, records []*Record) error {
	raw := make([]*kgo.Record, 0, len(records))
	for _, r := range records {
		if r.raw != nil {
			raw = append(raw, r.raw)
		}
	}
	if len(raw) == 0 {
		return nil
	}

	if err := c.client.CommitRecords(ctx, raw...); err != nil {
		return fmt.Errorf("failed to commit offsets: %w", err)
	}
	return nil
}

// Close leaves the group and closes the client
func (c *Consumer) Close() {
	c.client.Close()
}
