package domain

import "time"

// Ticket is one reserved seat in a zone. Rows are created only by the
// batch persister; the primary key on ID deduplicates replayed orders.
type Ticket struct {
	ID        string    `json:"id"`
	ZoneID    string    `json:"zone_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
