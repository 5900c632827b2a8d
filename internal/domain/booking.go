package domain

import (
	"context"
	"time"
)

// Booking represents an email registration for an event.
// swagger:model Booking
type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBooking creates a new Booking. ID is typically set by the repository on create.
func NewBooking(eventID, email string, createdAt, updatedAt time.Time) *Booking {
	return &Booking{
		EventID:   eventID,
		Email:     email,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// BookingRepository defines storage operations for bookings.
type BookingRepository interface {
	// Create inserts the booking and sets its ID. Returns ErrEventReference when the event does not exist.
	Create(ctx context.Context, booking *Booking) error
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// BookingService defines attendee-facing booking operations.
type BookingService interface {
	CreateBooking(ctx context.Context, eventID, email string) (*Booking, error)
	CountBookings(ctx context.Context, slug string) (int, error)
}
