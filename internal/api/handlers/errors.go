package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/reliefshare/internal/api/httpx"
	"github.com/baharkarakas/reliefshare/internal/api/validate"
	"github.com/baharkarakas/reliefshare/internal/middleware"
	"github.com/baharkarakas/reliefshare/internal/services"
)

// writeError maps service errors onto the HTTP taxonomy. conflictMsg is the
// client-facing message for services.ErrConflict.
func writeError(w http.ResponseWriter, r *http.Request, err error, conflictMsg string) {
	var verrs validate.Errs
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verrs):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", verrs.Error(), verrs)
	case errors.As(err, &tooLarge):
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large", nil)
	case errors.Is(err, services.ErrUnauthenticated):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Resource not found", nil)
	case errors.Is(err, services.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Not authorized", nil)
	case errors.Is(err, services.ErrConflict):
		if conflictMsg == "" {
			conflictMsg = "conflict"
		}
		httpx.WriteError(w, http.StatusBadRequest, "conflict", conflictMsg, nil)
	default:
		slog.Error("request failed",
			"err", err,
			"request_id", middleware.RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

// pathID parses {id}. A malformed id names nothing, so callers treat it as not found.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
