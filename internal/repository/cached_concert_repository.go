package repository

import (
	"context"
	"fmt"

	"github.com/patchanon/ticket-rush/internal/cache"
	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// CachedConcertRepository is a read-through cache over a
// ConcertRepository. The cached snapshot is the zone-bearing form, so
// GetByID and GetWithZones share one entry per concert.
type CachedConcertRepository struct {
	inner ConcertRepository
	cache *cache.Cache
	log   *logger.Logger
}

// NewCachedConcertRepository creates a new CachedConcertRepository
func NewCachedConcertRepository(inner ConcertRepository, c *cache.Cache) *CachedConcertRepository {
	return &CachedConcertRepository{inner: inner, cache: c, log: logger.Get()}
}

// Create inserts the concert; nothing to invalidate for a fresh id
func (r *CachedConcertRepository) Create(ctx context.Context, concert *domain.Concert) error {
	return r.inner.Create(ctx, concert)
}

// GetByID serves from the cached snapshot when present
func (r *CachedConcertRepository) GetByID(ctx context.Context, id string) (*domain.Concert, error) {
	return r.GetWithZones(ctx, id)
}

// GetWithZones returns the cached concert when present, falling back to
// the inner repository and caching the result
func (r *CachedConcertRepository) GetWithZones(ctx context.Context, id string) (*domain.Concert, error) {
	concert, err := r.cache.GetConcert(ctx, id)
	if err != nil {
		r.log.Warn(fmt.Sprintf("Concert cache read failed for %s: %v", id, err))
	}
	if concert != nil {
		return concert, nil
	}

	concert, err = r.inner.GetWithZones(ctx, id)
	if err != nil || concert == nil {
		return concert, err
	}

	if err := r.cache.SetConcert(ctx, concert); err != nil {
		r.log.Warn(fmt.Sprintf("Concert cache write failed for %s: %v", id, err))
	}
	return concert, nil
}

// GetByVenue delegates to the inner repository
func (r *CachedConcertRepository) GetByVenue(ctx context.Context, venueID string) ([]*domain.Concert, error) {
	return r.inner.GetByVenue(ctx, venueID)
}

var _ ConcertRepository = (*CachedConcertRepository)(nil)
