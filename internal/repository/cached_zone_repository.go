package repository

import (
	"context"
	"fmt"

	"github.com/patchanon/ticket-rush/internal/cache"
	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// CachedZoneRepository is a read-through cache over a ZoneRepository.
// Writes invalidate the concert's cache scope so stale zone and concert
// snapshots disappear together.
type CachedZoneRepository struct {
	inner ZoneRepository
	cache *cache.Cache
	log   *logger.Logger
}

// NewCachedZoneRepository creates a new CachedZoneRepository
func NewCachedZoneRepository(inner ZoneRepository, c *cache.Cache) *CachedZoneRepository {
	return &CachedZoneRepository{inner: inner, cache: c, log: logger.Get()}
}

// Create inserts the zone and invalidates its concert's cache scope
func (r *CachedZoneRepository) Create(ctx context.Context, zone *domain.Zone) error {
	if err := r.inner.Create(ctx, zone); err != nil {
		return err
	}
	r.invalidate(ctx, zone.ConcertID)
	return nil
}

// GetByID returns the cached zone when present, falling back to the
// inner repository and caching the result. Cache errors degrade to a
// direct read.
func (r *CachedZoneRepository) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	zone, err := r.cache.GetZone(ctx, id)
	if err != nil {
		r.log.Warn(fmt.Sprintf("Zone cache read failed for %s: %v", id, err))
	}
	if zone != nil {
		return zone, nil
	}

	zone, err = r.inner.GetByID(ctx, id)
	if err != nil || zone == nil {
		return zone, err
	}

	if err := r.cache.SetZone(ctx, zone); err != nil {
		r.log.Warn(fmt.Sprintf("Zone cache write failed for %s: %v", id, err))
	}
	return zone, nil
}

// GetByConcert always reads through to the inner repository; the zone
// list is not cached as a unit.
func (r *CachedZoneRepository) GetByConcert(ctx context.Context, concertID string) ([]*domain.Zone, error) {
	return r.inner.GetByConcert(ctx, concertID)
}

// Update writes the zone, invalidates the concert scope, and re-caches
// the fresh snapshot
func (r *CachedZoneRepository) Update(ctx context.Context, zone *domain.Zone) error {
	if err := r.inner.Update(ctx, zone); err != nil {
		return err
	}

	r.invalidate(ctx, zone.ConcertID)
	if err := r.cache.SetZone(ctx, zone); err != nil {
		r.log.Warn(fmt.Sprintf("Zone cache write failed for %s: %v", zone.ID, err))
	}
	return nil
}

// MaxZoneNumber delegates to the inner repository
func (r *CachedZoneRepository) MaxZoneNumber(ctx context.Context, concertID string) (int, error) {
	return r.inner.MaxZoneNumber(ctx, concertID)
}

func (r *CachedZoneRepository) invalidate(ctx context.Context, concertID string) {
	if err := r.cache.InvalidateConcert(ctx, concertID); err != nil {
		r.log.Warn(fmt.Sprintf("Cache invalidation failed for concert %s: %v", concertID, err))
	}
}

var _ ZoneRepository = (*CachedZoneRepository)(nil)
