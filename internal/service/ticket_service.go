package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patchanon/ticket-rush/internal/bus"
	"github.com/patchanon/ticket-rush/internal/correlator"
	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/repository"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// TicketService handles ticket reservation and lookup
type TicketService interface {
	Create(ctx context.Context, req *dto.CreateTicketRequest) (*dto.TicketDetail, error)
	GetByID(ctx context.Context, id string) (*dto.TicketDetail, error)
	ListByConcert(ctx context.Context, concertID string) ([]*domain.Ticket, error)
	ListByZone(ctx context.Context, zoneID string) ([]*domain.Ticket, error)
}

// ReplayCache answers GETs for recently reserved tickets whose rows may
// still be sitting in the persistence batch
type ReplayCache interface {
	GetTicketDetail(ctx context.Context, ticketID string) (*dto.TicketDetail, error)
}

// ticketService implements TicketService over the order pipeline: a
// create publishes a pending order, then blocks on the correlator until
// the worker's verdict comes back on the event stream.
type ticketService struct {
	tickets      repository.TicketRepository
	zones        repository.ZoneRepository
	concerts     repository.ConcertRepository
	producer     bus.OrderProducer
	correlator   *correlator.Correlator
	replay       ReplayCache
	orderTimeout time.Duration
	log          *logger.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(
	tickets repository.TicketRepository,
	zones repository.ZoneRepository,
	concerts repository.ConcertRepository,
	producer bus.OrderProducer,
	corr *correlator.Correlator,
	replay ReplayCache,
	orderTimeout time.Duration,
) TicketService {
	if orderTimeout <= 0 {
		orderTimeout = 30 * time.Second
	}
	return &ticketService{
		tickets:      tickets,
		zones:        zones,
		concerts:     concerts,
		producer:     producer,
		correlator:   corr,
		replay:       replay,
		orderTimeout: orderTimeout,
		log:          logger.Get(),
	}
}

// Create validates the request, publishes the order on the zone's
// partition, and blocks until the result arrives or the timeout fires.
// The fast-fail checks read possibly stale snapshots; the worker's
// offset check is the real admission decision.
func (s *ticketService) Create(ctx context.Context, req *dto.CreateTicketRequest) (*dto.TicketDetail, error) {
	zone, err := s.zones.GetByID(ctx, req.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate zone: %w", err)
	}
	if zone == nil {
		return nil, domain.ErrZoneNotFound
	}
	if zone.ConcertID != req.ConcertID {
		return nil, domain.ErrZoneConcertMismatch
	}
	if zone.SoldOut() {
		return nil, domain.ErrNoAvailableSeats
	}

	ticketID := uuid.NewString()
	order := dto.NewTicketOrderEvent(ticketID, req.ZoneID, req.ConcertID)

	if err := s.producer.ProduceOrder(ctx, order, zone.Partition()); err != nil {
		s.log.Error(fmt.Sprintf("Failed to submit order %s: %v", ticketID, err))
		return nil, domain.ErrOrderNotSubmitted
	}

	result, ok := s.correlator.Await(ctx, ticketID, s.orderTimeout)
	if !ok {
		s.log.Warn(fmt.Sprintf("Order %s timed out after %s", ticketID, s.orderTimeout))
		return nil, domain.ErrOrderTimeout
	}

	if !result.Succeeded() {
		return nil, mapResultError(result)
	}

	return result.TicketData, nil
}

// GetByID resolves a ticket, consulting the replay cache before the
// database so tickets still buffered by the persister are visible
func (s *ticketService) GetByID(ctx context.Context, id string) (*dto.TicketDetail, error) {
	if s.replay != nil {
		detail, err := s.replay.GetTicketDetail(ctx, id)
		if err != nil {
			s.log.Warn(fmt.Sprintf("Replay cache read failed for ticket %s: %v", id, err))
		}
		if detail != nil {
			return detail, nil
		}
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, domain.ErrTicketNotFound
	}

	detail := &dto.TicketDetail{
		ID:        ticket.ID,
		ZoneID:    ticket.ZoneID,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}

	if zone, err := s.zones.GetByID(ctx, ticket.ZoneID); err == nil && zone != nil {
		detail.ConcertID = zone.ConcertID
		detail.Price = zone.Price
		detail.ZoneName = zone.Name
		detail.ZoneDescription = zone.Description

		if concert, err := s.concerts.GetByID(ctx, zone.ConcertID); err == nil && concert != nil {
			detail.ConcertName = concert.Name
			detail.ConcertDescription = concert.Description
		}
	}

	return detail, nil
}

// ListByConcert returns all tickets sold across a concert's zones
func (s *ticketService) ListByConcert(ctx context.Context, concertID string) ([]*domain.Ticket, error) {
	tickets, err := s.tickets.GetByConcert(ctx, concertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets by concert: %w", err)
	}
	return tickets, nil
}

// ListByZone returns all tickets sold in a zone
func (s *ticketService) ListByZone(ctx context.Context, zoneID string) ([]*domain.Ticket, error) {
	tickets, err := s.tickets.GetByZone(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets by zone: %w", err)
	}
	return tickets, nil
}

// mapResultError translates a failed result event back into the domain
// error the handlers know how to map. The worker reports failures as
// message strings, so matching is on the stable substrings.
func mapResultError(result *dto.TicketResultEvent) error {
	msg := result.Error
	if msg == "" {
		msg = result.Message
	}

	switch {
	case strings.Contains(msg, "No available seats"):
		return domain.ErrNoAvailableSeats
	case strings.Contains(msg, "zone not found"):
		return domain.ErrZoneNotFound
	case strings.Contains(msg, "concert not found"):
		return domain.ErrConcertNotFound
	case strings.Contains(msg, "does not belong"):
		return domain.ErrZoneConcertMismatch
	default:
		if msg == "" {
			return domain.ErrReservationRejected
		}
		return fmt.Errorf("%w: %s", domain.ErrReservationRejected, msg)
	}
}
