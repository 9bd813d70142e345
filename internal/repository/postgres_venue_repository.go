package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/pkg/database"
)

// PostgresVenueRepository implements VenueRepository using PostgreSQL
type PostgresVenueRepository struct {
	db *database.PostgresDB
}

// NewPostgresVenueRepository creates a new PostgresVenueRepository
func NewPostgresVenueRepository(db *database.PostgresDB) *PostgresVenueRepository {
	return &PostgresVenueRepository{db: db}
}

// Create inserts a new venue
func (r *PostgresVenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	query := `
		INSERT INTO venues (id, name, location, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.Pool().QueryRow(ctx, query,
		venue.ID, venue.Name, venue.Location, venue.Capacity,
	).Scan(&venue.CreatedAt, &venue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create venue: %w", err)
	}

	return nil
}

// GetByID retrieves a venue by id, returning nil when not found
func (r *PostgresVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	query := `
		SELECT id, name, location, capacity, created_at, updated_at
		FROM venues
		WHERE id = $1
	`

	venue := &domain.Venue{}
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&venue.ID, &venue.Name, &venue.Location, &venue.Capacity,
		&venue.CreatedAt, &venue.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}

	return venue, nil
}

// List retrieves all venues
func (r *PostgresVenueRepository) List(ctx context.Context) ([]*domain.Venue, error) {
	query := `
		SELECT id, name, location, capacity, created_at, updated_at
		FROM venues
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer rows.Close()

	var venues []*domain.Venue
	for rows.Next() {
		venue := &domain.Venue{}
		if err := rows.Scan(
			&venue.ID, &venue.Name, &venue.Location, &venue.Capacity,
			&venue.CreatedAt, &venue.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate venues: %w", err)
	}

	return venues, nil
}

var _ VenueRepository = (*PostgresVenueRepository)(nil)
