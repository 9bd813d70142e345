// Package cache is the keyed TTL store for zone and concert snapshots
// and for ticket-detail result replay. Keys are the raw entity ids;
// entries carry a type discriminator so a replayed blob is never decoded
// as the wrong shape.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	pkgredis "github.com/patchanon/ticket-rush/pkg/redis"
)

// Cached type discriminators
const (
	TypeZone         = "Zone"
	TypeConcert      = "Concert"
	TypeTicketDetail = "TicketDetail"
)

type envelope struct {
	Type string          `json:"_cached_type"`
	Data json.RawMessage `json:"data"`
}

// Cache wraps the Redis client with typed entries and a default TTL
type Cache struct {
	client *pkgredis.Client
	ttl    time.Duration
}

// New creates a new Cache. ttl applies to entity snapshots; result
// replay entries take their own TTL.
func New(client *pkgredis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) set(ctx context.Context, key, cachedType string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s for cache key %s: %w", cachedType, key, err)
	}

	blob, err := json.Marshal(envelope{Type: cachedType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal cache envelope for key %s: %w", key, err)
	}

	if err := c.client.SetEX(ctx, key, blob, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache key %s: %w", key, err)
	}
	return nil
}

// get decodes the entry at key into v when the discriminator matches.
// A missing key, or one holding a different type, is a miss (false, nil).
// A corrupted entry is dropped and treated as a miss.
func (c *Cache) get(ctx context.Context, key, cachedType string, v interface{}) (bool, error) {
	blob, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		c.client.Del(ctx, key)
		return false, nil
	}
	if env.Type != cachedType {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		c.client.Del(ctx, key)
		return false, nil
	}

	return true, nil
}

// GetZone returns the cached zone snapshot, or nil on miss
func (c *Cache) GetZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	zone := &domain.Zone{}
	hit, err := c.get(ctx, zoneID, TypeZone, zone)
	if err != nil || !hit {
		return nil, err
	}
	return zone, nil
}

// SetZone writes the zone snapshot through to the cache
func (c *Cache) SetZone(ctx context.Context, zone *domain.Zone) error {
	return c.set(ctx, zone.ID, TypeZone, zone, c.ttl)
}

// GetConcert returns the cached concert (with zones), or nil on miss
func (c *Cache) GetConcert(ctx context.Context, concertID string) (*domain.Concert, error) {
	concert := &domain.Concert{}
	hit, err := c.get(ctx, concertID, TypeConcert, concert)
	if err != nil || !hit {
		return nil, err
	}
	return concert, nil
}

// SetConcert caches the concert snapshot
func (c *Cache) SetConcert(ctx context.Context, concert *domain.Concert) error {
	return c.set(ctx, concert.ID, TypeConcert, concert, c.ttl)
}

// GetTicketDetail returns the replayed detail for a ticket id, or nil
func (c *Cache) GetTicketDetail(ctx context.Context, ticketID string) (*dto.TicketDetail, error) {
	detail := &dto.TicketDetail{}
	hit, err := c.get(ctx, ticketID, TypeTicketDetail, detail)
	if err != nil || !hit {
		return nil, err
	}
	return detail, nil
}

// SetTicketDetail stores a reservation result for replay
func (c *Cache) SetTicketDetail(ctx context.Context, detail *dto.TicketDetail, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.set(ctx, detail.ID, TypeTicketDetail, detail, ttl)
}

// Delete removes the given keys
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// InvalidateConcert removes every entry scoped to the concert: the
// concert snapshot and all zone entries, whose ids embed the concert id.
func (c *Cache) InvalidateConcert(ctx context.Context, concertID string) error {
	if _, err := c.client.ScanDelete(ctx, "*"+concertID+"*"); err != nil {
		return fmt.Errorf("failed to invalidate concert %s: %w", concertID, err)
	}
	return nil
}
