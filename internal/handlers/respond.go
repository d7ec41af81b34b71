// Package handlers exposes the service layer over a JSON HTTP API and maps
// domain sentinel errors onto HTTP statuses.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/splitbook/backend/internal/auth"
	"github.com/splitbook/backend/internal/ledger"
	"github.com/splitbook/backend/internal/service"
	"github.com/splitbook/backend/internal/storage"
)

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// statusFor maps domain errors to HTTP statuses. Unknown errors become 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, ledger.ErrNotReceiver):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrAlreadyInvited),
		errors.Is(err, ledger.ErrAlreadyVerified),
		errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrSameParty),
		errors.Is(err, service.ErrRemarksTooLong),
		errors.Is(err, ledger.ErrInvalidSplit),
		errors.Is(err, ledger.ErrSplitSum),
		errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrWrongKind),
		errors.Is(err, ledger.ErrBadDecision),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode unmarshals the request body into v and runs struct validation.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(service.ErrMissingFields, err)
	}
	if err := validate.Struct(v); err != nil {
		return errors.Join(service.ErrMissingFields, err)
	}
	return nil
}
