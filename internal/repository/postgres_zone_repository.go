package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/pkg/database"
)

// PostgresZoneRepository implements ZoneRepository using PostgreSQL
type PostgresZoneRepository struct {
	db *database.PostgresDB
}

// NewPostgresZoneRepository creates a new PostgresZoneRepository
func NewPostgresZoneRepository(db *database.PostgresDB) *PostgresZoneRepository {
	return &PostgresZoneRepository{db: db}
}

// Create inserts a new zone
func (r *PostgresZoneRepository) Create(ctx context.Context, zone *domain.Zone) error {
	query := `
		INSERT INTO zones (id, concert_id, name, price, zone_capacity, available_seats, zone_number, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.Pool().QueryRow(ctx, query,
		zone.ID, zone.ConcertID, zone.Name, zone.Price,
		zone.ZoneCapacity, zone.AvailableSeats, zone.ZoneNumber, zone.Description,
	).Scan(&zone.CreatedAt, &zone.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create zone: %w", err)
	}

	return nil
}

// GetByID retrieves a zone by id, returning nil when not found
func (r *PostgresZoneRepository) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	query := `
		SELECT id, concert_id, name, price, zone_capacity, available_seats, zone_number, description, created_at, updated_at
		FROM zones
		WHERE id = $1
	`

	zone := &domain.Zone{}
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&zone.ID, &zone.ConcertID, &zone.Name, &zone.Price,
		&zone.ZoneCapacity, &zone.AvailableSeats, &zone.ZoneNumber,
		&zone.Description, &zone.CreatedAt, &zone.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}

	return zone, nil
}

// GetByConcert retrieves all zones of a concert, ordered by zone number
func (r *PostgresZoneRepository) GetByConcert(ctx context.Context, concertID string) ([]*domain.Zone, error) {
	query := `
		SELECT id, concert_id, name, price, zone_capacity, available_seats, zone_number, description, created_at, updated_at
		FROM zones
		WHERE concert_id = $1
		ORDER BY zone_number
	`

	rows, err := r.db.Pool().Query(ctx, query, concertID)
	if err != nil {
		return nil, fmt.Errorf("failed to get zones by concert: %w", err)
	}
	defer rows.Close()

	var zones []*domain.Zone
	for rows.Next() {
		zone := &domain.Zone{}
		if err := rows.Scan(
			&zone.ID, &zone.ConcertID, &zone.Name, &zone.Price,
			&zone.ZoneCapacity, &zone.AvailableSeats, &zone.ZoneNumber,
			&zone.Description, &zone.CreatedAt, &zone.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}

	return zones, nil
}

// Update writes the zone's mutable fields. Capacity, zone number and
// concert binding are immutable after creation.
func (r *PostgresZoneRepository) Update(ctx context.Context, zone *domain.Zone) error {
	query := `
		UPDATE zones
		SET name = $2, price = $3, available_seats = $4, description = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool().QueryRow(ctx, query,
		zone.ID, zone.Name, zone.Price, zone.AvailableSeats, zone.Description,
	).Scan(&zone.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrZoneNotFound
		}
		return fmt.Errorf("failed to update zone: %w", err)
	}

	return nil
}

// MaxZoneNumber returns the highest zone_number in the concert, 0 when
// none exist
func (r *PostgresZoneRepository) MaxZoneNumber(ctx context.Context, concertID string) (int, error) {
	query := `SELECT COALESCE(MAX(zone_number), 0) FROM zones WHERE concert_id = $1`

	var max int
	if err := r.db.Pool().QueryRow(ctx, query, concertID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max zone number: %w", err)
	}

	return max, nil
}

var _ ZoneRepository = (*PostgresZoneRepository)(nil)
