package reservations

import (
	"time"

	"github.com/lotuskitchen/lotuskitchen/internal/shared"
)

// Status enumerates the reservation lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a status string from the boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), nil
	default:
		return "", shared.Validationf("unknown reservation status %q", s)
	}
}

// Reservation is a table booking. Date carries the day; Time is the
// requested slot as entered, for example "19:30".
type Reservation struct {
	ID              string
	CustomerName    string
	Phone           string
	Email           string
	Date            time.Time
	Time            string
	People          int
	SpecialRequests string
	Status          Status
	Table           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateInput carries the fields for a new booking.
type CreateInput struct {
	CustomerName    string
	Phone           string
	Email           string
	Date            time.Time
	Time            string
	People          int
	SpecialRequests string
}

// UpdateInput carries optional booking changes.
type UpdateInput struct {
	Date            *time.Time
	Time            *string
	People          *int
	SpecialRequests *string
	Status          *Status
	Table           *string
}

// Filter narrows reservation listings.
type Filter struct {
	Status Status
	Date   time.Time
}
