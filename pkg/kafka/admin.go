package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// AdminConfig holds configuration for the admin client
type AdminConfig struct {
	Brokers  []string
	ClientID string
}

// Admin provides topic management
type Admin struct {
	client *kgo.Client
	adm    *kadm.Client
}

// NewAdmin creates a new admin client
func NewAdmin(ctx context.Context, cfg *AdminConfig) (*Admin, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	return &Admin{client: client, adm: kadm.NewClient(client)}, nil
}

// CreateTopics creates the given topics. A topic that already exists is
// treated as success so provisioning stays idempotent.
func (a *Admin) CreateTopics(ctx context.Context, partitions int32, replication int16, topics ...string) error {
	resp, err := a.adm.CreateTopics(ctx, partitions, replication, nil, topics...)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}

	for _, res := range resp.Sorted() {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("failed to create topic %s: %w", res.Topic, res.Err)
		}
	}

	return nil
}

// ListTopics returns all topic names with any of the given prefixes.
// With no prefixes, all topics are returned.
func (a *Admin) ListTopics(ctx context.Context, prefixes ...string) ([]string, error) {
	details, err := a.adm.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	var names []string
	for _, name := range details.Names() {
		if len(prefixes) == 0 {
			names = append(names, name)
			continue
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(name, prefix) {
				names = append(names, name)
				break
			}
		}
	}

	return names, nil
}

// Close closes the admin client
func (a *Admin) Close() {
	a.client.Close()
}
