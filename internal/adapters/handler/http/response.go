package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error kinds to the status codes existing clients expect:
// every client error is a 400 except authentication failures.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidInput, domain.KindConflict, domain.KindForbidden, domain.KindNotFound:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, err, statusFor(err))
}

// writeErrorStatus sends the domain message only. Store and driver details
// are logged, never returned.
func writeErrorStatus(w http.ResponseWriter, r *http.Request, err error, status int) {
	message := domain.ErrInternal.Message

	var domainErr *domain.Error
	if errors.As(err, &domainErr) && domainErr.Kind != domain.KindInternal {
		message = domainErr.Message
	}

	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("request failed")
	} else {
		hlog.FromRequest(r).Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	writeJSON(w, status, errorResponse{Success: false, Message: message})
}
