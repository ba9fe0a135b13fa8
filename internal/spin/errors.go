package spin

import "errors"

var (
	// ErrRateLimited is returned when a wallet exceeds its spin rate.
	ErrRateLimited = errors.New("spin rate limit exceeded")

	// ErrInvalidReferrer is returned for unknown or self referrers.
	ErrInvalidReferrer = errors.New("invalid referrer")

	// ErrPublicKeyMismatch is returned when a public key does not derive to the wallet.
	ErrPublicKeyMismatch = errors.New("public key does not match wallet address")

	// ErrPurchasesDisabled is returned when no treasury address is configured.
	ErrPurchasesDisabled = errors.New("spin purchases are disabled")

	// ErrPaymentNotFound is returned when the payment transaction is unknown to the node.
	ErrPaymentNotFound = errors.New("payment transaction not found")

	// ErrPaymentFailed is returned when the payment transaction did not execute successfully.
	ErrPaymentFailed = errors.New("payment transaction failed")

	// ErrPaymentSenderMismatch is returned when the payment was sent by another wallet.
	ErrPaymentSenderMismatch = errors.New("payment sender does not match wallet")

	// ErrPaymentTooSmall is returned when the payment does not cover one spin.
	ErrPaymentTooSmall = errors.New("payment does not cover a spin")

	// ErrAnalyticsDisabled is returned when no analytics store is configured.
	ErrAnalyticsDisabled = errors.New("spin analytics are disabled")
)
