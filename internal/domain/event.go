package domain

import (
	"context"
	"time"
)

// Event modes.
const (
	ModeOnline  = "online"
	ModeOffline = "offline"
	ModeHybrid  = "hybrid"
)

// Event represents a published event. Slug, Date and Time are always stored in canonical form.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Overview    string    `json:"overview"`
	Image       string    `json:"image"`
	Venue       string    `json:"venue"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Mode        string    `json:"mode"`
	Audience    string    `json:"audience"`
	Agenda      []string  `json:"agenda"`
	Organizer   string    `json:"organizer"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventInput carries raw, user-supplied event fields before normalization.
// Image is the URL returned by the image store.
type EventInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Overview    string   `json:"overview" validate:"required"`
	Image       string   `json:"image"`
	Venue       string   `json:"venue" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Time        string   `json:"time" validate:"required"`
	Mode        string   `json:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string   `json:"audience" validate:"required"`
	Agenda      []string `json:"agenda" validate:"required,min=1,dive,required"`
	Organizer   string   `json:"organizer" validate:"required"`
	Tags        []string `json:"tags" validate:"required,min=1,dive,required"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// Create inserts the event and sets its ID. A slug collision returns ErrDuplicateSlug.
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	// List returns all events, newest first.
	List(ctx context.Context) ([]*Event, error)
}

// EventService defines event-facing operations.
type EventService interface {
	CreateEvent(ctx context.Context, input *EventInput) (*Event, error)
	// CreateEventWithImage uploads image and creates the event with the resulting URL.
	// Nothing is persisted when the upload fails.
	CreateEventWithImage(ctx context.Context, input *EventInput, image []byte) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
}
