package api

import (
	"errors"
	"net/http"

	"spin-rewards/internal/spin"
	"spin-rewards/internal/storage"
	"spin-rewards/internal/sui"
)

// classify maps service errors to an HTTP status and a client-safe message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, sui.ErrInvalidAddress),
		errors.Is(err, sui.ErrInvalidDigest),
		errors.Is(err, sui.ErrInvalidPublicKey),
		errors.Is(err, spin.ErrInvalidReferrer),
		errors.Is(err, spin.ErrPublicKeyMismatch),
		errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not found"

	case errors.Is(err, spin.ErrPaymentNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, storage.ErrNoSpinsRemaining):
		return http.StatusConflict, err.Error()

	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict, "already processed"

	case errors.Is(err, spin.ErrPaymentFailed),
		errors.Is(err, spin.ErrPaymentSenderMismatch),
		errors.Is(err, spin.ErrPaymentTooSmall):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, spin.ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()

	case errors.Is(err, spin.ErrPurchasesDisabled),
		errors.Is(err, spin.ErrAnalyticsDisabled):
		return http.StatusServiceUnavailable, err.Error()

	default:
		return http.StatusInternalServerError, "internal error"
	}
}
