package bus

import (
	"context"
	"fmt"
)

// Topic name layout. Every concert owns one order topic and one event
// topic, both with exactly concert.NumZones partitions.
const (
	OrderTopicPrefix = "ticket-orders-"
	EventTopicPrefix = "ticket-events-"

	// Regex subscriptions used by the worker and the result consumer
	OrderTopicPattern = "^ticket-orders-.*"
	EventTopicPattern = "^ticket-events-.*"
)

// OrderTopic returns the order topic name for a concert
func OrderTopic(concertID string) string {
	return OrderTopicPrefix + concertID
}

// EventTopic returns the event topic name for a concert
func EventTopic(concertID string) string {
	return EventTopicPrefix + concertID
}

// TopicAdmin creates topics. Implemented by pkg/kafka.Admin.
type TopicAdmin interface {
	CreateTopics(ctx context.Context, partitions int32, replication int16, topics ...string) error
}

// TopicManager provisions the topic pair for a concert
type TopicManager struct {
	admin       TopicAdmin
	replication int16
}

// NewTopicManager creates a new TopicManager
func NewTopicManager(admin TopicAdmin, replication int16) *TopicManager {
	if replication <= 0 {
		replication = 1
	}
	return &TopicManager{admin: admin, replication: replication}
}

// Provision creates the concert's order and event topics with one
// partition per zone. Existing topics are accepted; the partition count
// of a topic is fixed on first creation, as is concert.NumZones.
func (m *TopicManager) Provision(ctx context.Context, concertID string, numZones int) error {
	if numZones <= 0 {
		return fmt.Errorf("invalid partition count %d for concert %s", numZones, concertID)
	}

	err := m.admin.CreateTopics(ctx, int32(numZones), m.replication,
		OrderTopic(concertID), EventTopic(concertID))
	if err != nil {
		return fmt.Errorf("failed to provision topics for concert %s: %w", concertID, err)
	}

	return nil
}
