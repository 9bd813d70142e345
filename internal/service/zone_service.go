package service

import (
	"context"
	"fmt"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/repository"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// ZoneService handles zone management
type ZoneService interface {
	Create(ctx context.Context, req *dto.CreateZoneRequest) (*domain.Zone, error)
	GetByID(ctx context.Context, id string) (*domain.Zone, error)
	ListByConcert(ctx context.Context, concertID string) ([]*domain.Zone, error)
	Update(ctx context.Context, id string, req *dto.UpdateZoneRequest) (*domain.Zone, error)
}

type zoneService struct {
	zones    repository.ZoneRepository
	concerts repository.ConcertRepository
	log      *logger.Logger
}

// NewZoneService creates a new ZoneService
func NewZoneService(zones repository.ZoneRepository, concerts repository.ConcertRepository) ZoneService {
	return &zoneService{zones: zones, concerts: concerts, log: logger.Get()}
}

// Create assigns the next zone number within the concert and persists
// the zone. The concert's num_zones is the hard ceiling: the topics were
// provisioned with that many partitions, and zone number maps to
// partition zone_number-1.
func (s *zoneService) Create(ctx context.Context, req *dto.CreateZoneRequest) (*domain.Zone, error) {
	concert, err := s.concerts.GetByID(ctx, req.ConcertID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate concert: %w", err)
	}
	if concert == nil {
		return nil, domain.ErrConcertNotFound
	}

	max, err := s.zones.MaxZoneNumber(ctx, req.ConcertID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign zone number: %w", err)
	}
	zoneNumber := max + 1
	if zoneNumber > concert.NumZones {
		return nil, domain.ErrTooManyZones
	}

	zone := &domain.Zone{
		ID:             fmt.Sprintf("zon_%s_%d", req.ConcertID, zoneNumber),
		ConcertID:      req.ConcertID,
		Name:           req.Name,
		Price:          req.Price,
		ZoneCapacity:   req.ZoneCapacity,
		AvailableSeats: req.ZoneCapacity,
		ZoneNumber:     zoneNumber,
		Description:    req.Description,
	}

	if err := s.zones.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}

	return zone, nil
}

// GetByID returns a zone
func (s *zoneService) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	zone, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	if zone == nil {
		return nil, domain.ErrZoneNotFound
	}
	return zone, nil
}

// ListByConcert returns a concert's zones in zone-number order
func (s *zoneService) ListByConcert(ctx context.Context, concertID string) ([]*domain.Zone, error) {
	zones, err := s.zones.GetByConcert(ctx, concertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	return zones, nil
}

// Update applies the non-nil fields and writes the zone back. Capacity
// and zone number are immutable; available_seats may be adjusted by an
// operator, clamped to [0, capacity].
func (s *zoneService) Update(ctx context.Context, id string, req *dto.UpdateZoneRequest) (*domain.Zone, error) {
	zone, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	if zone == nil {
		return nil, domain.ErrZoneNotFound
	}

	if req.Name != nil {
		zone.Name = *req.Name
	}
	if req.Price != nil {
		zone.Price = *req.Price
	}
	if req.AvailableSeats != nil {
		seats := *req.AvailableSeats
		if seats < 0 {
			seats = 0
		}
		if seats > zone.ZoneCapacity {
			seats = zone.ZoneCapacity
		}
		zone.AvailableSeats = seats
	}
	if req.Description != nil {
		zone.Description = *req.Description
	}

	if err := s.zones.Update(ctx, zone); err != nil {
		if err == domain.ErrZoneNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update zone: %w", err)
	}

	return zone, nil
}
