package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/lngkit/internal/apperr"
	"github.com/starford/lngkit/internal/langservice"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeServiceError maps service errors onto HTTP statuses. Unknown errors
// are logged with op and reported as 500.
func writeServiceError(w http.ResponseWriter, op string, err error, attrs ...any) {
	var knf *langservice.KeyNotFoundError
	var inv *langservice.InvalidContentError
	switch {
	case errors.As(err, &knf):
		writeJSON(w, http.StatusNotFound, KeyNotFoundResponse{
			Error:       "key not found",
			Code:        knf.Code,
			Key:         knf.Key,
			Suggestions: nonNil(knf.Suggestions),
		})
	case errors.As(err, &inv):
		writeJSON(w, http.StatusUnprocessableEntity, InvalidContentResponse{
			Error:       "content has parse errors",
			Warnings:    inv.Result.Warnings,
			Errors:      inv.Result.Errors,
			Diagnostics: inv.Result.Diagnostics,
		})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid language code"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	default:
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
