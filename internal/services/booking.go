package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devevent/internal/domain"
	"devevent/internal/metrics"
	"devevent/internal/normalize"

	"github.com/google/uuid"
)

type bookingService struct {
	eventRepo      domain.EventRepository
	bookingRepo    domain.BookingRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewBookingService creates a BookingService. emailService may be nil to skip confirmation emails.
func NewBookingService(
	eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		eventRepo:      eventRepo,
		bookingRepo:    bookingRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// CreateBooking validates the email, checks the event exists, then persists the booking.
// The same email may book the same event more than once.
func (s *bookingService) CreateBooking(ctx context.Context, eventID, email string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalize.NormalizeEmail(email)
	if email == "" {
		return nil, s.reject(domain.NewValidationError("email", "is required"))
	}
	if !normalize.ValidEmail(email) {
		return nil, s.reject(domain.NewValidationError("email", "must be a valid email address"))
	}
	eventID = strings.TrimSpace(eventID)
	if err := uuid.Validate(eventID); err != nil {
		return nil, s.reject(domain.NewValidationError("event_id", "must be a valid UUID"))
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.reject(domain.ErrEventReference)
		}
		return nil, s.reject(fmt.Errorf("get event: %w", err))
	}

	now := time.Now().UTC()
	booking := domain.NewBooking(event.ID, email, now, now)
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrEventReference) {
			return nil, s.reject(domain.ErrEventReference)
		}
		return nil, s.reject(fmt.Errorf("create booking: %w", err))
	}
	metrics.BookingsCreated.Inc()
	s.logger.InfoContext(ctx, "booking created", "booking_id", booking.ID, "event_id", event.ID)

	s.sendConfirmation(ctx, event, booking)
	return booking, nil
}

// sendConfirmation never fails the booking; delivery problems are only logged.
func (s *bookingService) sendConfirmation(ctx context.Context, event *domain.Event, booking *domain.Booking) {
	if s.emailService == nil {
		return
	}
	data := &domain.BookingConfirmationEmailData{
		Email:      booking.Email,
		EventTitle: event.Title,
		EventSlug:  event.Slug,
		Date:       event.Date,
		Time:       event.Time,
		Venue:      event.Venue,
		Location:   event.Location,
		Mode:       event.Mode,
	}
	if err := s.emailService.SendBookingConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "booking confirmation email failed", "booking_id", booking.ID, "err", err)
	}
}

func (s *bookingService) CountBookings(ctx context.Context, slug string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	clean, ok := normalize.SanitizeSlug(slug)
	if !ok {
		return 0, domain.NewValidationError("slug", "must contain only letters, numbers, and hyphens")
	}
	event, err := s.eventRepo.GetBySlug(ctx, clean)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get event by slug: %w", err)
	}
	n, err := s.bookingRepo.CountByEventID(ctx, event.ID)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func (s *bookingService) reject(err error) error {
	metrics.DomainErrors.WithLabelValues("create_booking", errorKind(err)).Inc()
	return err
}
