package domain

import "time"

// Concert is a single event at a venue. NumZones is fixed once the
// concert's topics are provisioned: it is the partition count of both
// the order and the event topic, and the ceiling on zone creation.
type Concert struct {
	ID          string    `json:"id"`
	VenueID     string    `json:"venue_id"`
	Name        string    `json:"name"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	NumZones    int       `json:"num_zones"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Zones is populated by ConcertRepository.GetWithZones
	Zones []*Zone `json:"zones,omitempty"`
}
