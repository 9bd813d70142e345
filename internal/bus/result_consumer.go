package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/pkg/kafka"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// ResultSink receives decoded result events. Implemented by the
// pending-result correlator.
type ResultSink interface {
	Deposit(result *dto.TicketResultEvent)
}

// ReplayStore caches successful results for later GETs.
// Implemented by internal/cache.Cache.
type ReplayStore interface {
	SetTicketDetail(ctx context.Context, detail *dto.TicketDetail, ttl time.Duration) error
}

// ResultConsumerConfig holds configuration for the result consumer
type ResultConsumerConfig struct {
	ReplayTTL time.Duration
}

// ResultConsumer is the API process's subscription to every concert's
// event topic. Each result is handed to the correlator and, when
// successful, written to the replay cache.
type ResultConsumer struct {
	consumer *kafka.Consumer
	sink     ResultSink
	replay   ReplayStore
	ttl      time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewResultConsumer creates a new ResultConsumer
func NewResultConsumer(consumer *kafka.Consumer, sink ResultSink, replay ReplayStore, cfg *ResultConsumerConfig) *ResultConsumer {
	ttl := time.Hour
	if cfg != nil && cfg.ReplayTTL > 0 {
		ttl = cfg.ReplayTTL
	}
	return &ResultConsumer{
		consumer: consumer,
		sink:     sink,
		replay:   replay,
		ttl:      ttl,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start consumes result events until ctx is cancelled or Stop is called
func (c *ResultConsumer) Start(ctx context.Context) {
	defer close(c.doneCh)
	c.log.Info("Result consumer started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}

		records, err := c.consumer.Poll(ctx)
		if err != nil {
			if err == kafka.ErrClientClosed || ctx.Err() != nil {
				return
			}
			c.log.Error(fmt.Sprintf("Result consumer poll failed: %v", err))
			time.Sleep(time.Second)
			continue
		}

		for _, record := range records {
			c.processRecord(ctx, record)
		}

		if len(records) > 0 {
			if err := c.consumer.CommitRecords(ctx, records); err != nil {
				c.log.Error(fmt.Sprintf("Result consumer commit failed: %v", err))
			}
		}
	}
}

// Stop signals the consume loop, waits for it to drain, and closes the
// underlying consumer.
func (c *ResultConsumer) Stop() {
	close(c.stopCh)
	c.consumer.Close()
	<-c.doneCh
	c.log.Info("Result consumer stopped")
}

func (c *ResultConsumer) processRecord(ctx context.Context, record *kafka.Record) {
	var result dto.TicketResultEvent
	if err := json.Unmarshal(record.Value, &result); err != nil {
		c.log.Error(fmt.Sprintf("Failed to decode result event at %s[%d]@%d: %v",
			record.Topic, record.Partition, record.Offset, err))
		return
	}
	if result.TicketID == "" {
		return
	}

	c.sink.Deposit(&result)
	c.log.Info(fmt.Sprintf("Received result for ticket %s: %s", result.TicketID, result.Status))

	// Cache the detail independently of any waiter so a timed-out
	// request can still be answered by a later GET.
	if result.Succeeded() && result.TicketData != nil {
		if err := c.replay.SetTicketDetail(ctx, result.TicketData, c.ttl); err != nil {
			c.log.Error(fmt.Sprintf("Failed to cache result for ticket %s: %v", result.TicketID, err))
		}
	}
}
