package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/repository"
)

// VenueService handles venue management
type VenueService interface {
	Create(ctx context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error)
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	List(ctx context.Context) ([]*domain.Venue, error)
}

type venueService struct {
	venues repository.VenueRepository
}

// NewVenueService creates a new VenueService
func NewVenueService(venues repository.VenueRepository) VenueService {
	return &venueService{venues: venues}
}

// Create persists a new venue
func (s *venueService) Create(ctx context.Context, req *dto.CreateVenueRequest) (*domain.Venue, error) {
	venue := &domain.Venue{
		ID:       "ven_" + uuid.NewString(),
		Name:     req.Name,
		Location: req.Location,
		Capacity: req.Capacity,
	}

	if err := s.venues.Create(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	return venue, nil
}

// GetByID returns a venue
func (s *venueService) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	venue, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	if venue == nil {
		return nil, domain.ErrVenueNotFound
	}
	return venue, nil
}

// List returns all venues
func (s *venueService) List(ctx context.Context) ([]*domain.Venue, error) {
	venues, err := s.venues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}
