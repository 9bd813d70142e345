package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/repository"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// Enqueue error conditions
var (
	ErrPersisterStopped = errors.New("batch persister is stopped")
	ErrPersisterFull    = errors.New("batch persister queue is full")
)

// BatchPersisterConfig holds batching parameters
type BatchPersisterConfig struct {
	// BatchSize triggers a flush once this many tickets are buffered
	BatchSize int
	// BatchTimeout flushes whatever is buffered when no size trigger fires
	BatchTimeout time.Duration
	// QueueCapacity bounds the intake channel; 0 derives it from BatchSize
	QueueCapacity int
}

// BatchPersister accumulates admitted tickets and writes them to the
// database in transactional batches, amortizing one transaction across
// many reservations. A failed flush keeps the batch and retries it on
// the next trigger; inserts are idempotent, so a retried batch never
// double-counts seats.
type BatchPersister struct {
	repo    repository.TicketRepository
	cfg     BatchPersisterConfig
	log     *logger.Logger
	intake  chan *domain.Ticket
	stopCh  chan struct{}
	doneCh  chan struct{}
	stopped sync.Once
}

// NewBatchPersister creates a new BatchPersister
func NewBatchPersister(repo repository.TicketRepository, cfg BatchPersisterConfig) *BatchPersister {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 10 * time.Second
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = cfg.BatchSize * 10
	}

	return &BatchPersister{
		repo:   repo,
		cfg:    cfg,
		log:    logger.Get(),
		intake: make(chan *domain.Ticket, cfg.QueueCapacity),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start runs the flush loop until Stop is called
func (p *BatchPersister) Start() {
	go p.run()
}

// Enqueue hands a ticket to the persister without blocking. A full
// queue is an error so the caller can reject the reservation instead of
// stalling its partition.
func (p *BatchPersister) Enqueue(ticket *domain.Ticket) error {
	select {
	case <-p.stopCh:
		return ErrPersisterStopped
	default:
	}

	select {
	case p.intake <- ticket:
		return nil
	default:
		return ErrPersisterFull
	}
}

// Stop drains the queue, flushes the remainder, and waits for the loop
// to exit
func (p *BatchPersister) Stop() {
	p.stopped.Do(func() {
		close(p.stopCh)
	})
	<-p.doneCh
}

func (p *BatchPersister) run() {
	defer close(p.doneCh)
	p.log.Info(fmt.Sprintf("Batch persister started (batch_size=%d, batch_timeout=%s)",
		p.cfg.BatchSize, p.cfg.BatchTimeout))

	ticker := time.NewTicker(p.cfg.BatchTimeout)
	defer ticker.Stop()

	batch := make([]*domain.Ticket, 0, p.cfg.BatchSize)

	for {
		select {
		case ticket := <-p.intake:
			batch = append(batch, ticket)
			if len(batch) >= p.cfg.BatchSize {
				batch = p.flush(batch)
				ticker.Reset(p.cfg.BatchTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				batch = p.flush(batch)
			}

		case <-p.stopCh:
			// Drain what Enqueue already accepted, then flush once more.
			for {
				select {
				case ticket := <-p.intake:
					batch = append(batch, ticket)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				if remaining := p.flush(batch); len(remaining) > 0 {
					p.log.Error(fmt.Sprintf("Batch persister stopping with %d unpersisted tickets", len(remaining)))
				}
			}
			p.log.Info("Batch persister stopped")
			return
		}
	}
}

// flush writes the batch, returning it unchanged on failure so the next
// trigger retries it, or an empty reusable slice on success
func (p *BatchPersister) flush(batch []*domain.Ticket) []*domain.Ticket {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.repo.PersistBatch(ctx, batch); err != nil {
		p.log.Error(fmt.Sprintf("Failed to persist batch of %d tickets, will retry: %v", len(batch), err))
		return batch
	}

	p.log.Info(fmt.Sprintf("Persisted batch of %d tickets", len(batch)))
	return batch[:0]
}
