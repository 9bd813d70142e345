package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/pkg/database"
)

// PostgresConcertRepository implements ConcertRepository using PostgreSQL
type PostgresConcertRepository struct {
	db *database.PostgresDB
}

// NewPostgresConcertRepository creates a new PostgresConcertRepository
func NewPostgresConcertRepository(db *database.PostgresDB) *PostgresConcertRepository {
	return &PostgresConcertRepository{db: db}
}

// Create inserts a new concert
func (r *PostgresConcertRepository) Create(ctx context.Context, concert *domain.Concert) error {
	query := `
		INSERT INTO concerts (id, venue_id, name, start_time, end_time, num_zones, description, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.Pool().QueryRow(ctx, query,
		concert.ID, concert.VenueID, concert.Name, concert.StartTime, concert.EndTime,
		concert.NumZones, concert.Description, concert.Location,
	).Scan(&concert.CreatedAt, &concert.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create concert: %w", err)
	}

	return nil
}

// GetByID retrieves a concert by id, returning nil when not found
func (r *PostgresConcertRepository) GetByID(ctx context.Context, id string) (*domain.Concert, error) {
	query := `
		SELECT id, venue_id, name, start_time, end_time, num_zones, description, location, created_at, updated_at
		FROM concerts
		WHERE id = $1
	`

	concert := &domain.Concert{}
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&concert.ID, &concert.VenueID, &concert.Name, &concert.StartTime, &concert.EndTime,
		&concert.NumZones, &concert.Description, &concert.Location,
		&concert.CreatedAt, &concert.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get concert: %w", err)
	}

	return concert, nil
}

// GetWithZones retrieves a concert and its zones, ordered by zone number.
// Returns nil when the concert does not exist.
func (r *PostgresConcertRepository) GetWithZones(ctx context.Context, id string) (*domain.Concert, error) {
	concert, err := r.GetByID(ctx, id)
	if err != nil || concert == nil {
		return concert, err
	}

	query := `
		SELECT id, concert_id, name, price, zone_capacity, available_seats, zone_number, description, created_at, updated_at
		FROM zones
		WHERE concert_id = $1
		ORDER BY zone_number
	`

	rows, err := r.db.Pool().Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get concert zones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		zone := &domain.Zone{}
		if err := rows.Scan(
			&zone.ID, &zone.ConcertID, &zone.Name, &zone.Price,
			&zone.ZoneCapacity, &zone.AvailableSeats, &zone.ZoneNumber,
			&zone.Description, &zone.CreatedAt, &zone.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan concert zone: %w", err)
		}
		concert.Zones = append(concert.Zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate concert zones: %w", err)
	}

	return concert, nil
}

// GetByVenue retrieves all concerts at a venue
func (r *PostgresConcertRepository) GetByVenue(ctx context.Context, venueID string) ([]*domain.Concert, error) {
	query := `
		SELECT id, venue_id, name, start_time, end_time, num_zones, description, location, created_at, updated_at
		FROM concerts
		WHERE venue_id = $1
		ORDER BY start_time
	`

	rows, err := r.db.Pool().Query(ctx, query, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get concerts by venue: %w", err)
	}
	defer rows.Close()

	var concerts []*domain.Concert
	for rows.Next() {
		concert := &domain.Concert{}
		if err := rows.Scan(
			&concert.ID, &concert.VenueID, &concert.Name, &concert.StartTime, &concert.EndTime,
			&concert.NumZones, &concert.Description, &concert.Location,
			&concert.CreatedAt, &concert.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan concert: %w", err)
		}
		concerts = append(concerts, concert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate concerts: %w", err)
	}

	return concerts, nil
}

var _ ConcertRepository = (*PostgresConcertRepository)(nil)
