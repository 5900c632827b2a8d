package controllers

import (
	"context"
	"io"
	"log/slog"

	"devevent/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createErr    error
	getErr       error
	listErr      error
	event        *domain.Event
	events       []*domain.Event
	lastInput    *domain.EventInput
	lastImage    []byte
	withImage    bool
	lastSlug     string
	createCalled bool
}

func (f *fakeEventService) CreateEvent(_ context.Context, input *domain.EventInput) (*domain.Event, error) {
	f.createCalled = true
	f.lastInput = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.event, nil
}

func (f *fakeEventService) CreateEventWithImage(_ context.Context, input *domain.EventInput, image []byte) (*domain.Event, error) {
	f.createCalled = true
	f.withImage = true
	f.lastInput = input
	f.lastImage = image
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.event, nil
}

func (f *fakeEventService) GetEventBySlug(_ context.Context, slug string) (*domain.Event, error) {
	f.lastSlug = slug
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.event, nil
}

func (f *fakeEventService) ListEvents(_ context.Context) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

// fakeBookingService implements domain.BookingService for handler tests.
type fakeBookingService struct {
	createErr    error
	countErr     error
	count        int
	lastEventID  string
	lastEmail    string
	lastSlug     string
	createCalled bool
}

func (f *fakeBookingService) CreateBooking(_ context.Context, eventID, email string) (*domain.Booking, error) {
	f.createCalled = true
	f.lastEventID = eventID
	f.lastEmail = email
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Booking{ID: "bk-1", EventID: eventID, Email: email}, nil
}

func (f *fakeBookingService) CountBookings(_ context.Context, slug string) (int, error) {
	f.lastSlug = slug
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}
