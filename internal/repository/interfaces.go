package repository

import (
	"context"

	"github.com/patchanon/ticket-rush/internal/domain"
)

// Not-found convention: lookups return (nil, nil) when no row matches,
// mirroring pgx.ErrNoRows handling in the Postgres implementations.

// VenueRepository manages venue persistence
type VenueRepository interface {
	Create(ctx context.Context, venue *domain.Venue) error
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	List(ctx context.Context) ([]*domain.Venue, error)
}

// ConcertRepository manages concert persistence
type ConcertRepository interface {
	Create(ctx context.Context, concert *domain.Concert) error
	GetByID(ctx context.Context, id string) (*domain.Concert, error)
	// GetWithZones returns the concert with its zone list eagerly attached
	GetWithZones(ctx context.Context, id string) (*domain.Concert, error)
	GetByVenue(ctx context.Context, venueID string) ([]*domain.Concert, error)
}

// ZoneRepository manages zone persistence
type ZoneRepository interface {
	Create(ctx context.Context, zone *domain.Zone) error
	GetByID(ctx context.Context, id string) (*domain.Zone, error)
	GetByConcert(ctx context.Context, concertID string) ([]*domain.Zone, error)
	Update(ctx context.Context, zone *domain.Zone) error
	// MaxZoneNumber returns the highest zone_number in the concert, 0 when
	// the concert has no zones yet
	MaxZoneNumber(ctx context.Context, concertID string) (int, error)
}

// TicketRepository manages ticket persistence
type TicketRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByZone(ctx context.Context, zoneID string) ([]*domain.Ticket, error)
	GetByConcert(ctx context.Context, concertID string) ([]*domain.Ticket, error)
	// PersistBatch inserts tickets and decrements each zone's
	// available_seats in a single transaction. Tickets whose id already
	// exists are skipped and excluded from the decrement, so replaying a
	// batch is safe.
	PersistBatch(ctx context.Context, tickets []*domain.Ticket) error
}
