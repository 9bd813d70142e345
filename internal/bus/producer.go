package bus

import (
	"context"
	"fmt"

	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/pkg/kafka"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// OrderProducer publishes order events to a concert's order topic
type OrderProducer interface {
	ProduceOrder(ctx context.Context, order *dto.TicketOrderEvent, partition int32) error
}

// ResultProducer publishes result events to a concert's event topic
type ResultProducer interface {
	ProduceResult(ctx context.Context, result *dto.TicketResultEvent, partition int32) error
}

// TicketProducer publishes order and result events. The record key is
// the zone id and the partition is always passed explicitly, computed
// from the zone's number, never derived from key hashing.
type TicketProducer struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewTicketProducer creates a new TicketProducer
func NewTicketProducer(producer *kafka.Producer) *TicketProducer {
	return &TicketProducer{producer: producer, log: logger.Get()}
}

// ProduceOrder publishes a pending order on the zone's partition of the
// concert's order topic. Returns only after broker acknowledgement.
func (p *TicketProducer) ProduceOrder(ctx context.Context, order *dto.TicketOrderEvent, partition int32) error {
	topic := OrderTopic(order.ConcertID)

	if err := p.producer.ProduceJSON(ctx, topic, order.ZoneID, partition, order, nil); err != nil {
		p.log.Error(fmt.Sprintf("Failed to produce order %s to %s[%d]: %v",
			order.TicketID, topic, partition, err))
		return fmt.Errorf("failed to produce ticket order: %w", err)
	}

	p.log.Info(fmt.Sprintf("Ticket order %s sent to %s[%d]", order.TicketID, topic, partition))
	return nil
}

// ProduceResult publishes a reservation result on the zone's partition
// of the concert's event topic.
func (p *TicketProducer) ProduceResult(ctx context.Context, result *dto.TicketResultEvent, partition int32) error {
	topic := EventTopic(result.ConcertID)

	if err := p.producer.ProduceJSON(ctx, topic, result.ZoneID, partition, result, nil); err != nil {
		p.log.Error(fmt.Sprintf("Failed to produce result %s to %s[%d]: %v",
			result.TicketID, topic, partition, err))
		return fmt.Errorf("failed to produce ticket result: %w", err)
	}

	p.log.Info(fmt.Sprintf("Ticket result %s (%s) sent to %s[%d]",
		result.TicketID, result.Status, topic, partition))
	return nil
}

// Close closes the underlying producer
func (p *TicketProducer) Close() {
	p.producer.Close()
}

var (
	_ OrderProducer  = (*TicketProducer)(nil)
	_ ResultProducer = (*TicketProducer)(nil)
)
