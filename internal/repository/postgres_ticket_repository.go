package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/pkg/database"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL
type PostgresTicketRepository struct {
	db *database.PostgresDB
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(db *database.PostgresDB) *PostgresTicketRepository {
	return &PostgresTicketRepository{db: db}
}

// GetByID retrieves a ticket by id, returning nil when not found
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `
		SELECT id, zone_id, created_at, updated_at
		FROM tickets
		WHERE id = $1
	`

	ticket := &domain.Ticket{}
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&ticket.ID, &ticket.ZoneID, &ticket.CreatedAt, &ticket.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// GetByZone retrieves all tickets in a zone
func (r *PostgresTicketRepository) GetByZone(ctx context.Context, zoneID string) ([]*domain.Ticket, error) {
	query := `
		SELECT id, zone_id, created_at, updated_at
		FROM tickets
		WHERE zone_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Pool().Query(ctx, query, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets by zone: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// GetByConcert retrieves all tickets across a concert's zones
func (r *PostgresTicketRepository) GetByConcert(ctx context.Context, concertID string) ([]*domain.Ticket, error) {
	query := `
		SELECT t.id, t.zone_id, t.created_at, t.updated_at
		FROM tickets t
		JOIN zones z ON z.id = t.zone_id
		WHERE z.concert_id = $1
		ORDER BY t.created_at
	`

	rows, err := r.db.Pool().Query(ctx, query, concertID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets by concert: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// PersistBatch inserts the batch and decrements zone seats in one
// transaction. Duplicate ticket ids (a batch replayed after a crash) are
// skipped via ON CONFLICT, and only rows actually inserted count toward
// each zone's decrement, so the seat totals stay consistent on retry.
func (r *PostgresTicketRepository) PersistBatch(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO tickets (id, zone_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, ticket := range tickets {
		batch.Queue(insert, ticket.ID, ticket.ZoneID)
	}

	results := tx.SendBatch(ctx, batch)

	inserted := make(map[string]int)
	for _, ticket := range tickets {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return fmt.Errorf("failed to insert ticket %s: %w", ticket.ID, err)
		}
		if tag.RowsAffected() > 0 {
			inserted[ticket.ZoneID]++
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	decrement := `
		UPDATE zones
		SET available_seats = GREATEST(available_seats - $2, 0), updated_at = NOW()
		WHERE id = $1
	`

	for zoneID, count := range inserted {
		if _, err := tx.Exec(ctx, decrement, zoneID, count); err != nil {
			return fmt.Errorf("failed to decrement seats for zone %s: %w", zoneID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

func scanTickets(rows pgx.Rows) ([]*domain.Ticket, error) {
	var tickets []*domain.Ticket
	for rows.Next() {
		ticket := &domain.Ticket{}
		if err := rows.Scan(&ticket.ID, &ticket.ZoneID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

var _ TicketRepository = (*PostgresTicketRepository)(nil)
