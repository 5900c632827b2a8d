package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"devevent/internal/delivery/http/helpers"
	"devevent/internal/domain"
)

// DefaultMaxUploadBytes caps the multipart body of POST /events.
const DefaultMaxUploadBytes int64 = 10 << 20

// multipartMemory is the part of a multipart form kept in memory before spilling to disk.
const multipartMemory = 4 << 20

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success response envelope for GET /events.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger         *slog.Logger
	Service        domain.EventService
	MaxUploadBytes int64
}

func NewEventController(logger *slog.Logger, svc domain.EventService, maxUploadBytes int64) *EventController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &EventController{
		Logger:         logger,
		Service:        svc,
		MaxUploadBytes: maxUploadBytes,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Returns every published event, newest first.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse "data contains the events"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEventBySlug godoc
// @Summary Get an event by slug
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [get]
func (c *EventController) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetEventBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event from a multipart form. The image file is uploaded to the image store and its URL saved on the event; a plain image URL field is accepted instead of a file. agenda and tags accept either a JSON array or repeated fields. The slug is derived from the title.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param overview formData string true "Overview"
// @Param venue formData string true "Venue"
// @Param location formData string true "Location"
// @Param date formData string true "Date (YYYY-MM-DD)"
// @Param time formData string true "Time (HH:MM, am/pm accepted)"
// @Param mode formData string true "online, offline or hybrid"
// @Param audience formData string true "Audience"
// @Param organizer formData string true "Organizer"
// @Param agenda formData []string true "Agenda items" collectionFormat(multi)
// @Param tags formData []string true "Tags" collectionFormat(multi)
// @Param image formData file false "Event image"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 502 {object} helpers.APIResponse "error.code: upload_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.WriteJSONError(w, http.StatusRequestEntityTooLarge, helpers.ErrCodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", c.MaxUploadBytes))
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	input, err := eventInputFromForm(r.MultipartForm)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}

	image, hasFile, err := readImage(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}

	var event *domain.Event
	if hasFile {
		event, err = c.Service.CreateEventWithImage(r.Context(), input, image)
	} else {
		event, err = c.Service.CreateEvent(r.Context(), input)
	}
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

func eventInputFromForm(form *multipart.Form) (*domain.EventInput, error) {
	value := func(key string) string {
		if vs := form.Value[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	agenda, err := listField(form, "agenda")
	if err != nil {
		return nil, err
	}
	tags, err := listField(form, "tags")
	if err != nil {
		return nil, err
	}
	return &domain.EventInput{
		Title:       value("title"),
		Description: value("description"),
		Overview:    value("overview"),
		Image:       value("image"),
		Venue:       value("venue"),
		Location:    value("location"),
		Date:        value("date"),
		Time:        value("time"),
		Mode:        value("mode"),
		Audience:    value("audience"),
		Agenda:      agenda,
		Organizer:   value("organizer"),
		Tags:        tags,
	}, nil
}

// listField reads a list sent either as one JSON array value or as repeated form fields.
func listField(form *multipart.Form, key string) ([]string, error) {
	values := form.Value[key]
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var items []string
		if err := json.Unmarshal([]byte(values[0]), &items); err != nil {
			return nil, domain.NewValidationError(key, "must be a JSON array of strings")
		}
		return items, nil
	}
	return values, nil
}

// readImage returns the uploaded image bytes. hasFile is false when no file part was sent.
func readImage(r *http.Request) (data []byte, hasFile bool, err error) {
	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read image: %w", err)
	}
	defer file.Close()
	data, err = io.ReadAll(file)
	if err != nil {
		return nil, false, fmt.Errorf("read image: %w", err)
	}
	return data, true, nil
}
