package domain

import "errors"

// Validation errors (surfaced as 400/404)
var (
	ErrVenueNotFound       = errors.New("venue not found")
	ErrConcertNotFound     = errors.New("concert not found")
	ErrZoneNotFound        = errors.New("zone not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrZoneConcertMismatch = errors.New("zone does not belong to the specified concert")
	ErrTooManyZones        = errors.New("cannot create more zones than the concert's num_zones")
)

// Capacity errors. The message substring "No available seats" is part of
// the client contract; keep it stable.
var (
	ErrNoAvailableSeats = errors.New("No available seats in this zone")
)

// Pipeline errors
var (
	ErrOrderTimeout        = errors.New("ticket processing timeout")
	ErrOrderNotSubmitted   = errors.New("failed to submit ticket order to processing queue")
	ErrReservationRejected = errors.New("ticket reservation rejected")
)
