package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

var kindStatus = map[domain.ErrKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuth:           http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindRateLimited:    http.StatusTooManyRequests,
	domain.KindInfrastructure: http.StatusServiceUnavailable,
	domain.KindInternal:       http.StatusInternalServerError,
}

// StatusOf reports the status WriteError would send for err.
func StatusOf(err error) int {
	status, _ := payloadOf(err)
	return status
}

// payloadOf never exposes anything but the fixed internal_error payload for
// errors that are not domain errors.
func payloadOf(err error) (int, ErrorPayload) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, ErrorPayload{Code: "internal_error", Message: "internal error"}
	}

	status, ok := kindStatus[de.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return status, ErrorPayload{Code: de.Code, Message: de.Message, Meta: de.Meta}
}

// WriteError renders err as {"error": {...}} with the status of its kind.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := payloadOf(err)
	payload.RequestID = RequestIDFromContext(r)

	// RFC 6750 challenge for bearer-protected routes
	switch payload.Code {
	case "token_missing":
		w.Header().Set("WWW-Authenticate", `Bearer realm="account"`)
	case "token_invalid":
		w.Header().Set("WWW-Authenticate", `Bearer realm="account", error="invalid_token"`)
	}

	if status >= http.StatusInternalServerError {
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		logger.WithCtx(r.Context()).Error().
			Err(err).
			Str("code", payload.Code).
			Str("method", r.Method).
			Str("route", route).
			Msg("request failed")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	WriteJSON(w, status, ErrorBody{Error: payload})
}
