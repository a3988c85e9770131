// Package apperr defines the domain error kinds shared by every module.
// Services wrap these sentinels with context using %w; callers and the HTTP
// layer classify with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks malformed or missing input. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown registration, payment, QR code, category or participant.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStateTransition marks a confirm or decline on a non-pending payment.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrCapacityExceeded marks an early-bird reservation beyond the remaining slots.
	ErrCapacityExceeded = errors.New("early-bird capacity exceeded")

	ErrInsufficientScanBudget     = errors.New("insufficient scan budget")
	ErrInsufficientUnclaimedPacks = errors.New("insufficient unclaimed packs")
	ErrAlreadyClaimed             = errors.New("race pack already claimed")
	ErrInvalidParticipant         = errors.New("invalid participant")

	// ErrTransactionAborted marks a commit that failed or lost a concurrency race.
	// Nothing was persisted and the operation is safe to retry.
	ErrTransactionAborted = errors.New("transaction aborted")

	// ErrExternalService marks a failed side effect (email, event publish).
	// It is logged, never returned from a core operation.
	ErrExternalService = errors.New("external service error")
)

// Validationf wraps ErrValidation with a formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

var kinds = []struct {
	err    error
	kind   string
	status int
}{
	{ErrValidation, "validation", http.StatusBadRequest},
	{ErrNotFound, "not_found", http.StatusNotFound},
	{ErrInvalidStateTransition, "invalid_state_transition", http.StatusConflict},
	{ErrCapacityExceeded, "capacity_exceeded", http.StatusConflict},
	{ErrInsufficientScanBudget, "insufficient_scan_budget", http.StatusConflict},
	{ErrInsufficientUnclaimedPacks, "insufficient_unclaimed_packs", http.StatusConflict},
	{ErrAlreadyClaimed, "already_claimed", http.StatusConflict},
	{ErrInvalidParticipant, "invalid_participant", http.StatusUnprocessableEntity},
	{ErrTransactionAborted, "transaction_aborted", http.StatusServiceUnavailable},
	{ErrExternalService, "external_service", http.StatusBadGateway},
}

// Kind returns a stable machine-readable name for err, or "internal".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}

// HTTPStatus maps err to the status code the transport layer should return.
func HTTPStatus(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// IsDomain reports whether err is a business-rule failure, as opposed to an
// infrastructure problem. Services return domain errors as failure results.
func IsDomain(err error) bool {
	if err == nil || errors.Is(err, ErrTransactionAborted) || errors.Is(err, ErrExternalService) {
		return false
	}
	return Kind(err) != "internal"
}
