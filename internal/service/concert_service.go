package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/repository"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// ConcertService handles concert management
type ConcertService interface {
	Create(ctx context.Context, req *dto.CreateConcertRequest) (*domain.Concert, error)
	GetByID(ctx context.Context, id string) (*domain.Concert, error)
	ListByVenue(ctx context.Context, venueID string) ([]*domain.Concert, error)
}

// TopicProvisioner creates a concert's topic pair. Implemented by
// bus.TopicManager.
type TopicProvisioner interface {
	Provision(ctx context.Context, concertID string, numZones int) error
}

type concertService struct {
	concerts repository.ConcertRepository
	venues   repository.VenueRepository
	topics   TopicProvisioner
	log      *logger.Logger
}

// NewConcertService creates a new ConcertService
func NewConcertService(
	concerts repository.ConcertRepository,
	venues repository.VenueRepository,
	topics TopicProvisioner,
) ConcertService {
	return &concertService{
		concerts: concerts,
		venues:   venues,
		topics:   topics,
		log:      logger.Get(),
	}
}

// Create persists the concert and provisions its order and event topics
// with num_zones partitions. Provisioning failure is non-fatal: the
// first reservation attempt surfaces it, and the admin can re-create the
// concert's topics out of band.
func (s *concertService) Create(ctx context.Context, req *dto.CreateConcertRequest) (*domain.Concert, error) {
	venue, err := s.venues.GetByID(ctx, req.VenueID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate venue: %w", err)
	}
	if venue == nil {
		return nil, domain.ErrVenueNotFound
	}

	concert := &domain.Concert{
		ID:          newConcertID(),
		VenueID:     req.VenueID,
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		NumZones:    req.NumZones,
		Description: req.Description,
		Location:    req.Location,
	}
	if concert.Location == "" {
		concert.Location = venue.Location
	}

	if err := s.concerts.Create(ctx, concert); err != nil {
		return nil, fmt.Errorf("failed to create concert: %w", err)
	}

	if s.topics != nil {
		if err := s.topics.Provision(ctx, concert.ID, concert.NumZones); err != nil {
			s.log.Error(fmt.Sprintf("Failed to provision topics for concert %s: %v", concert.ID, err))
		}
	}

	return concert, nil
}

// GetByID returns the concert with its zones
func (s *concertService) GetByID(ctx context.Context, id string) (*domain.Concert, error) {
	concert, err := s.concerts.GetWithZones(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get concert: %w", err)
	}
	if concert == nil {
		return nil, domain.ErrConcertNotFound
	}
	return concert, nil
}

// ListByVenue returns all concerts at a venue
func (s *concertService) ListByVenue(ctx context.Context, venueID string) ([]*domain.Concert, error) {
	concerts, err := s.concerts.GetByVenue(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list concerts: %w", err)
	}
	return concerts, nil
}

// newConcertID generates a short unique id. The id appears in topic
// names, so it stays lowercase hex.
func newConcertID() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return "con_" + hex.EncodeToString(buf)
}
