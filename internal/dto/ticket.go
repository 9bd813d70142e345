package dto

import "time"

// CreateTicketRequest is the body of POST /tickets/
type CreateTicketRequest struct {
	ZoneID    string `json:"zone_id" binding:"required"`
	ConcertID string `json:"concert_id" binding:"required"`
}

// TicketDetail is the reply DTO for a reserved ticket, denormalized from
// the zone and concert snapshots at reservation time.
type TicketDetail struct {
	ID                 string    `json:"id"`
	ZoneID             string    `json:"zone_id"`
	ConcertID          string    `json:"concert_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	ConcertName        string    `json:"concert_name"`
	ConcertDescription string    `json:"concert_description"`
	Price              float64   `json:"price"`
	ZoneName           string    `json:"zone_name"`
	ZoneDescription    string    `json:"zone_description"`
}
