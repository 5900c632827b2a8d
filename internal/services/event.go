package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"devevent/internal/domain"
	"devevent/internal/metrics"
	"devevent/internal/normalize"

	"github.com/go-playground/validator/v10"
)

// DefaultImageFolder is the folder hint passed to the image store.
const DefaultImageFolder = "DevEvent"

type eventService struct {
	eventRepo      domain.EventRepository
	imageStore     domain.ImageStore
	imageFolder    string
	validate       *validator.Validate
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	imageStore domain.ImageStore,
	imageFolder string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	if imageFolder == "" {
		imageFolder = DefaultImageFolder
	}
	return &eventService{
		eventRepo:      eventRepo,
		imageStore:     imageStore,
		imageFolder:    imageFolder,
		validate:       newValidator(),
		logger:         logger,
		contextTimeout: timeout,
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *eventService) CreateEvent(ctx context.Context, input *domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.buildEvent(input)
	if err != nil {
		return nil, s.reject("create_event", err)
	}
	image := strings.TrimSpace(input.Image)
	if err := s.validate.Var(image, "required,url"); err != nil {
		return nil, s.reject("create_event", fieldError("image", err))
	}
	event.Image = image

	return s.persist(ctx, event)
}

func (s *eventService) CreateEventWithImage(ctx context.Context, input *domain.EventInput, image []byte) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(image) == 0 {
		return nil, s.reject("create_event", domain.NewValidationError("image", "image file is required"))
	}
	// Reject bad input before paying for an upload.
	event, err := s.buildEvent(input)
	if err != nil {
		return nil, s.reject("create_event", err)
	}

	url, err := s.imageStore.Store(ctx, image, s.imageFolder)
	if err != nil {
		if !errors.Is(err, domain.ErrUpload) {
			err = fmt.Errorf("%w: %w", domain.ErrUpload, err)
		}
		return nil, s.reject("create_event", err)
	}
	event.Image = url

	return s.persist(ctx, event)
}

func (s *eventService) persist(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, s.reject("create_event", &domain.ValidationError{
				Field:  "slug",
				Reason: fmt.Sprintf("an event with slug %q already exists", event.Slug),
				Err:    domain.ErrDuplicateSlug,
			})
		}
		return nil, s.reject("create_event", fmt.Errorf("create event: %w", err))
	}

	metrics.EventsCreated.Inc()
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "slug", event.Slug)
	return event, nil
}

// buildEvent trims and validates input and returns an event with canonical slug,
// date, time and mode. Image is left for the caller.
func (s *eventService) buildEvent(input *domain.EventInput) (*domain.Event, error) {
	if input == nil {
		return nil, domain.NewValidationError("", "event data is required")
	}
	in := trimInput(input)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationFromValidator(err)
	}

	slug := normalize.DeriveSlug(in.Title)
	if slug == "" {
		return nil, domain.NewValidationError("title", "must contain at least one letter or digit")
	}
	date, err := normalize.NormalizeDate(in.Date)
	if err != nil {
		return nil, &domain.ValidationError{Field: "date", Err: err}
	}
	clock, err := normalize.NormalizeTime(in.Time)
	if err != nil {
		return nil, &domain.ValidationError{Field: "time", Err: err}
	}

	return &domain.Event{
		Title:       in.Title,
		Slug:        slug,
		Description: in.Description,
		Overview:    in.Overview,
		Venue:       in.Venue,
		Location:    in.Location,
		Date:        date,
		Time:        clock,
		Mode:        in.Mode,
		Audience:    in.Audience,
		Agenda:      in.Agenda,
		Organizer:   in.Organizer,
		Tags:        in.Tags,
	}, nil
}

func trimInput(input *domain.EventInput) *domain.EventInput {
	return &domain.EventInput{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Overview:    strings.TrimSpace(input.Overview),
		Image:       strings.TrimSpace(input.Image),
		Venue:       strings.TrimSpace(input.Venue),
		Location:    strings.TrimSpace(input.Location),
		Date:        strings.TrimSpace(input.Date),
		Time:        strings.TrimSpace(input.Time),
		Mode:        strings.ToLower(strings.TrimSpace(input.Mode)),
		Audience:    strings.TrimSpace(input.Audience),
		Agenda:      trimAll(input.Agenda),
		Organizer:   strings.TrimSpace(input.Organizer),
		Tags:        trimAll(input.Tags),
	}
}

func trimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = strings.TrimSpace(it)
	}
	return out
}

func validationFromValidator(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fe.Field(), validationReason(fe))
	}
	return domain.NewValidationError("", err.Error())
}

func fieldError(field string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return domain.NewValidationError(field, validationReason(verrs[0]))
	}
	return domain.NewValidationError(field, err.Error())
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "is required"
		}
		if strings.Contains(fe.Field(), "[") {
			return "must not be blank"
		}
		return "is required"
	case "min":
		return "must have at least one item"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	clean, ok := normalize.SanitizeSlug(slug)
	if !ok {
		return nil, domain.NewValidationError("slug", "must contain only letters, numbers, and hyphens")
	}
	event, err := s.eventRepo.GetBySlug(ctx, clean)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// reject records err against operation in the domain error metrics and returns it unchanged.
func (s *eventService) reject(operation string, err error) error {
	metrics.DomainErrors.WithLabelValues(operation, errorKind(err)).Inc()
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateSlug):
		return "duplicate_slug"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrEventReference):
		return "reference"
	case errors.Is(err, domain.ErrUpload):
		return "upload"
	case errors.Is(err, domain.ErrConnection):
		return "connection"
	}
	return "internal"
}
