package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"devevent/internal/domain"
)

// WriteDomainError maps a service error onto a status code and error envelope.
// Unexpected errors are logged and answered with a generic message.
func WriteDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrDuplicateSlug):
		writeError(w, http.StatusConflict, &APIError{Code: ErrCodeConflict, Message: err.Error(), Field: "slug"})
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: verr.Error(), Field: verr.Field})
	case errors.Is(err, domain.ErrEventReference):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrUpload):
		logger.ErrorContext(r.Context(), "image upload failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusBadGateway, ErrCodeUploadFailed, "image upload failed")
	case errors.Is(err, domain.ErrConnection):
		logger.ErrorContext(r.Context(), "store unavailable", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "service temporarily unavailable")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
