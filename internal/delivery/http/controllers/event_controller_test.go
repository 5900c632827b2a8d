package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"devevent/internal/delivery/http/helpers"
	"devevent/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formFile struct {
	name string
	data []byte
}

// multipartBody builds a multipart request body. Each value slice entry is written as its own part.
func multipartBody(t *testing.T, fields map[string][]string, file *formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func baseFields() map[string][]string {
	return map[string][]string{
		"title":       {"React Summit"},
		"description": {"The biggest React conference"},
		"overview":    {"Two days of talks"},
		"venue":       {"Kromhouthal"},
		"location":    {"Amsterdam"},
		"date":        {"2026-6-12"},
		"time":        {"9:30 AM"},
		"mode":        {"offline"},
		"audience":    {"Frontend developers"},
		"organizer":   {"GitNation"},
		"agenda":      {`["Keynote","Workshops"]`},
		"tags":        {"react", "frontend"},
	}
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	return envelope
}

func TestEventController_CreateEvent(t *testing.T) {
	created := &domain.Event{ID: "ev-1", Slug: "react-summit", Title: "React Summit"}

	tests := []struct {
		name       string
		fields     func() map[string][]string
		file       *formFile
		fakeErr    error
		wantStatus int
		wantCode   string
		check      func(t *testing.T, fake *fakeEventService)
	}{
		{
			name:       "with image file",
			fields:     baseFields,
			file:       &formFile{name: "summit.png", data: []byte("\x89PNG")},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, fake *fakeEventService) {
				assert.True(t, fake.withImage)
				assert.Equal(t, []byte("\x89PNG"), fake.lastImage)
				assert.Equal(t, "React Summit", fake.lastInput.Title)
				assert.Equal(t, "2026-6-12", fake.lastInput.Date)
				assert.Equal(t, []string{"Keynote", "Workshops"}, fake.lastInput.Agenda)
				assert.Equal(t, []string{"react", "frontend"}, fake.lastInput.Tags)
			},
		},
		{
			name: "with image url",
			fields: func() map[string][]string {
				f := baseFields()
				f["image"] = []string{"https://cdn.example.com/summit.png"}
				return f
			},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, fake *fakeEventService) {
				assert.False(t, fake.withImage)
				assert.Equal(t, "https://cdn.example.com/summit.png", fake.lastInput.Image)
			},
		},
		{
			name: "agenda is not a json array",
			fields: func() map[string][]string {
				f := baseFields()
				f["agenda"] = []string{`["Keynote",`}
				return f
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
			check: func(t *testing.T, fake *fakeEventService) {
				assert.False(t, fake.createCalled)
			},
		},
		{
			name:       "validation error",
			fields:     baseFields,
			fakeErr:    &domain.ValidationError{Field: "date", Err: domain.ErrInvalidDate},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "duplicate slug",
			fields:     baseFields,
			fakeErr:    &domain.ValidationError{Field: "slug", Err: domain.ErrDuplicateSlug},
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
		{
			name:       "upload failure",
			fields:     baseFields,
			file:       &formFile{name: "summit.png", data: []byte("png")},
			fakeErr:    fmt.Errorf("%w: s3 timeout", domain.ErrUpload),
			wantStatus: http.StatusBadGateway,
			wantCode:   helpers.ErrCodeUploadFailed,
		},
		{
			name:       "unexpected error",
			fields:     baseFields,
			fakeErr:    errors.New("db error"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{event: created, createErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake, 0)
			body, contentType := multipartBody(t, tt.fields(), tt.file)
			req := httptest.NewRequest(http.MethodPost, "/events", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()

			ctrl.CreateEvent(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				data, ok := envelope.Data.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "react-summit", data["slug"])
			} else {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			}
			if tt.check != nil {
				tt.check(t, fake)
			}
		})
	}
}

func TestEventController_CreateEvent_NotMultipart(t *testing.T) {
	fake := &fakeEventService{}
	ctrl := NewEventController(testLogger, fake, 0)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(`{"title":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	ctrl.CreateEvent(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, fake.createCalled)
}

func TestEventController_CreateEvent_TooLarge(t *testing.T) {
	fake := &fakeEventService{}
	ctrl := NewEventController(testLogger, fake, 1024)
	body, contentType := multipartBody(t, baseFields(), &formFile{name: "big.png", data: bytes.Repeat([]byte("a"), 4096)})
	req := httptest.NewRequest(http.MethodPost, "/events", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	ctrl.CreateEvent(rr, req)

	assert.Contains(t, []int{http.StatusRequestEntityTooLarge, http.StatusBadRequest}, rr.Code)
	assert.False(t, fake.createCalled)
}

func TestEventController_GetEventBySlug(t *testing.T) {
	tests := []struct {
		name       string
		fakeErr    error
		wantStatus int
		wantCode   string
	}{
		{"found", nil, http.StatusOK, ""},
		{"not found", fmt.Errorf("get event: %w", domain.ErrNotFound), http.StatusNotFound, helpers.ErrCodeNotFound},
		{"invalid slug", domain.NewValidationError("slug", "invalid slug"), http.StatusBadRequest, helpers.ErrCodeBadRequest},
		{"store down", fmt.Errorf("%w: refused", domain.ErrConnection), http.StatusServiceUnavailable, helpers.ErrCodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeEventService{event: &domain.Event{ID: "ev-1", Slug: "react-summit"}, getErr: tt.fakeErr}
			ctrl := NewEventController(testLogger, fake, 0)
			mux := http.NewServeMux()
			mux.HandleFunc("GET /events/{slug}", ctrl.GetEventBySlug)
			req := httptest.NewRequest(http.MethodGet, "/events/react-summit", nil)
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "react-summit", fake.lastSlug)
			envelope := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantCode, envelope.Error.Code)
			} else {
				assert.Nil(t, envelope.Error)
			}
		})
	}
}

func TestEventController_ListEvents(t *testing.T) {
	t.Run("empty list is an array", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{events: []*domain.Event{}}, 0)
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/events", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":[],"error":null}`, rr.Body.String())
	})

	t.Run("error", func(t *testing.T) {
		ctrl := NewEventController(testLogger, &fakeEventService{listErr: errors.New("boom")}, 0)
		rr := httptest.NewRecorder()

		ctrl.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/events", nil))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		envelope := decodeEnvelope(t, rr)
		require.NotNil(t, envelope.Error)
		assert.NotContains(t, envelope.Error.Message, "boom")
	})
}
