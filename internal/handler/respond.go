package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/service"
	"github.com/templui/betterme/internal/ui"
	"github.com/templui/betterme/internal/validation"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = &validation.Error{Field: "body", Message: "Invalid request body"}

// decodeJSON reads a JSON body into dst. Any decoding problem is reported
// as a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		return errInvalidBody
	}
	return nil
}

// renderServiceError maps a service error to a status code. Unknown errors
// are logged under failure and answered with a generic 500.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error, failure string, attrs ...any) {
	if verr, ok := validation.AsError(err); ok {
		ui.RenderError(w, r, http.StatusBadRequest, verr.Message)
		return
	}

	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		ui.RenderError(w, r, http.StatusNotFound, "Goal not found")
	case errors.Is(err, repository.ErrStepNotFound):
		ui.RenderError(w, r, http.StatusNotFound, "Step not found")
	case errors.Is(err, service.ErrSeasonNotFound):
		ui.RenderError(w, r, http.StatusNotFound, "Season not found")
	case errors.Is(err, repository.ErrUserNotFound):
		ui.RenderError(w, r, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrStorageDisabled):
		ui.RenderError(w, r, http.StatusBadRequest, "Picture uploads are not configured")
	default:
		slog.Error(strings.ToLower(failure), append([]any{"error", err, "path", r.URL.Path}, attrs...)...)
		ui.RenderError(w, r, http.StatusInternalServerError, failure)
	}
}
