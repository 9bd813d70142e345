package domain

import "time"

// Zone is a priced seating area within a concert.
// Invariants: 0 <= AvailableSeats <= ZoneCapacity, and ZoneNumber is
// unique within the concert in [1, concert.NumZones].
type Zone struct {
	ID             string    `json:"id"`
	ConcertID      string    `json:"concert_id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	ZoneCapacity   int       `json:"zone_capacity"`
	AvailableSeats int       `json:"available_seats"`
	ZoneNumber     int       `json:"zone_number"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Partition returns the topic partition all of this zone's traffic lands
// on. A partition has at most one live group consumer, so routing a zone
// to a single partition serializes its seat decisions.
func (z *Zone) Partition() int32 {
	return int32(z.ZoneNumber - 1)
}

// SoldOut reports whether the zone has no seats left
func (z *Zone) SoldOut() bool {
	return z.AvailableSeats <= 0
}
