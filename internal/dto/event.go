package dto

import "time"

// Order and result statuses on the wire
const (
	OrderStatusPending  = "pending"
	ResultStatusSuccess = "success"
	ResultStatusFailed  = "failed"
)

// TicketOrderEvent is published to the concert's order topic on the
// zone's partition. Never persisted; consumed by exactly one member of
// the worker group.
type TicketOrderEvent struct {
	TicketID  string    `json:"ticket_id"`
	ZoneID    string    `json:"zone_id"`
	ConcertID string    `json:"concert_id"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// NewTicketOrderEvent creates a pending order event
func NewTicketOrderEvent(ticketID, zoneID, concertID string) *TicketOrderEvent {
	return &TicketOrderEvent{
		TicketID:  ticketID,
		ZoneID:    zoneID,
		ConcertID: concertID,
		Timestamp: time.Now().UTC(),
		Status:    OrderStatusPending,
	}
}

// TicketResultEvent is published by the reservation worker to the
// concert's event topic and consumed by every API instance.
type TicketResultEvent struct {
	TicketID   string        `json:"ticket_id"`
	ZoneID     string        `json:"zone_id"`
	ConcertID  string        `json:"concert_id"`
	Status     string        `json:"status"`
	Message    string        `json:"message,omitempty"`
	Error      string        `json:"error,omitempty"`
	TicketData *TicketDetail `json:"ticket_data,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Succeeded reports whether the reservation was accepted
func (e *TicketResultEvent) Succeeded() bool {
	return e.Status == ResultStatusSuccess
}
