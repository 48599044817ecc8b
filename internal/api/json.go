package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/adrkit/internal/apperr"
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

// statusFor maps an error kind to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrMissingArgument), errors.Is(err, apperr.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrPathNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrDuplicateRecord):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidChoice), errors.Is(err, apperr.ErrNoStatusField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error body. Internal errors are logged and
// their message is not exposed.
func writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, code, errorBody("internal error"))
		return
	}
	writeJSON(w, code, errorBody(err.Error()))
}
