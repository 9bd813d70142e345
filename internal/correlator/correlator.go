// Package correlator bridges the asynchronous result stream back to the
// HTTP handlers waiting on it. State is process-local: every API replica
// consumes every event topic, so the replica that produced an order will
// always see its result.
package correlator

import (
	"context"
	"sync"
	"time"

	"github.com/patchanon/ticket-rush/internal/dto"
)

// ReplayLookup resolves results that were delivered before this process
// started waiting, from the TTL cache written by the result consumer.
type ReplayLookup interface {
	GetTicketDetail(ctx context.Context, ticketID string) (*dto.TicketDetail, error)
}

// slot is a single-consumer mailbox for one in-flight ticket id
type slot struct {
	ch          chan *dto.TicketResultEvent
	depositedAt time.Time
}

// Correlator maps in-flight ticket ids to waiting request handlers
type Correlator struct {
	mu        sync.Mutex
	slots     map[string]*slot
	replay    ReplayLookup
	staleTTL  time.Duration
	lastSweep time.Time
}

// Option configures a Correlator
type Option func(*Correlator)

// WithReplay sets the replay cache consulted before waiting
func WithReplay(replay ReplayLookup) Option {
	return func(c *Correlator) { c.replay = replay }
}

// WithStaleTTL overrides how long an unclaimed deposit is kept
func WithStaleTTL(ttl time.Duration) Option {
	return func(c *Correlator) { c.staleTTL = ttl }
}

// New creates a new Correlator
func New(opts ...Option) *Correlator {
	c := &Correlator{
		slots:     make(map[string]*slot),
		staleTTL:  5 * time.Minute,
		lastSweep: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deposit delivers a result to the waiter for the ticket id. The slot is
// created when absent so a result arriving before Await still delivers.
// The payload is single-consumer; a duplicate deposit for an id whose
// mailbox is full is dropped.
func (c *Correlator) Deposit(result *dto.TicketResultEvent) {
	c.mu.Lock()
	s, ok := c.slots[result.TicketID]
	if !ok {
		s = &slot{ch: make(chan *dto.TicketResultEvent, 1)}
		c.slots[result.TicketID] = s
	}
	s.depositedAt = time.Now()
	c.sweepLocked()
	c.mu.Unlock()

	select {
	case s.ch <- result:
	default:
	}
}

// Await blocks until a result for the ticket id arrives, the timeout
// expires, or ctx is cancelled. A result already deposited, or present
// in the replay cache, returns immediately. The slot is removed on every
// exit path to bound memory.
func (c *Correlator) Await(ctx context.Context, ticketID string, timeout time.Duration) (*dto.TicketResultEvent, bool) {
	c.mu.Lock()
	s, ok := c.slots[ticketID]
	if !ok {
		if replayed := c.lookupReplay(ctx, ticketID); replayed != nil {
			c.mu.Unlock()
			return replayed, true
		}
		s = &slot{ch: make(chan *dto.TicketResultEvent, 1)}
		c.slots[ticketID] = s
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.slots, ticketID)
		c.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-s.ch:
		return result, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// Len returns the number of live slots
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// lookupReplay is called with the lock held but does no slot access
func (c *Correlator) lookupReplay(ctx context.Context, ticketID string) *dto.TicketResultEvent {
	if c.replay == nil {
		return nil
	}
	detail, err := c.replay.GetTicketDetail(ctx, ticketID)
	if err != nil || detail == nil {
		return nil
	}
	return &dto.TicketResultEvent{
		TicketID:   ticketID,
		ZoneID:     detail.ZoneID,
		ConcertID:  detail.ConcertID,
		Status:     dto.ResultStatusSuccess,
		TicketData: detail,
		Timestamp:  time.Now().UTC(),
	}
}

// sweepLocked drops deposits nobody claimed. Runs at most once a minute;
// the common case is an HTTP waiter that timed out before its result
// arrived, which the replay cache covers for later GETs.
func (c *Correlator) sweepLocked() {
	now := time.Now()
	if now.Sub(c.lastSweep) < time.Minute {
		return
	}
	c.lastSweep = now

	for id, s := range c.slots {
		if !s.depositedAt.IsZero() && now.Sub(s.depositedAt) > c.staleTTL {
			delete(c.slots, id)
		}
	}
}
