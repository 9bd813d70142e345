package dto

import "time"

// CreateVenueRequest is the body of POST /venues/
type CreateVenueRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
}

// CreateConcertRequest is the body of POST /concerts/
type CreateConcertRequest struct {
	VenueID     string    `json:"venue_id" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	NumZones    int       `json:"num_zones" binding:"required,gt=0"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
}

// CreateZoneRequest is the body of POST /zones/
type CreateZoneRequest struct {
	ConcertID    string  `json:"concert_id" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	ZoneCapacity int     `json:"zone_capacity" binding:"required,gt=0"`
	Description  string  `json:"description"`
}

// UpdateZoneRequest is the body of PUT /zones/:id. Nil fields are left
// unchanged.
type UpdateZoneRequest struct {
	Name           *string  `json:"name"`
	Price          *float64 `json:"price"`
	AvailableSeats *int     `json:"available_seats"`
	Description    *string  `json:"description"`
}
