package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"quill/internal/domain"
	"quill/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var forbiddenErr *domain.ForbiddenError
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &forbiddenErr):
		// Boundary errors carry a machine-readable code for clients
		if forbiddenErr.Code != "" {
			httputil.RespondErrorWithExtras(w, http.StatusForbidden, forbiddenErr.Error(), map[string]interface{}{
				"code": forbiddenErr.Code,
			})
			return
		}
		httputil.RespondError(w, http.StatusForbidden, forbiddenErr.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID validates that a path or body parameter is a well-formed UUID
func parseUUID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// pathID extracts and validates a UUID path parameter, writing a 400 on
// failure. The bool reports whether the caller should continue.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	id, err := parseUUID(raw)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return "", false
	}
	return id, true
}
