// Package server exposes the REST API. Handlers decode JSON requests, call
// the service layer, and reply with the standard response envelope.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/praneeth1335/backend/internal/auth"
	"github.com/praneeth1335/backend/internal/service"
)

// envelope is the uniform shape of every API response body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: status < 400, Message: message, Data: data}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors become
// opaque 500s so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var unsettled *service.UnsettledBalanceError

	switch {
	case errors.As(err, &unsettled):
		writeJSON(w, http.StatusConflict, unsettled.Error(), map[string]float64{"balance": unsettled.Balance})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrFriendNotFound),
		errors.Is(err, service.ErrTransactionNotFound):
		writeJSON(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrDuplicateFriend):
		writeJSON(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrNothingToSettle),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountDeactivated):
		writeJSON(w, http.StatusUnauthorized, err.Error(), nil)
	default:
		slog.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

// decode parses the JSON request body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, message, nil)
}
