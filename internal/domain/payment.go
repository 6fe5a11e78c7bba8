package domain

import (
	"context"
	"errors"
)

// Sentinel errors for the payment gate on paid events.
var (
	// ErrPaymentRequired is returned when registering for a paid event without a payment session.
	ErrPaymentRequired = errors.New("payment required")
	// ErrPaymentUnverified is returned when the provider reports the session
	// unpaid, or cannot be reached. The gate fails closed.
	ErrPaymentUnverified = errors.New("payment could not be verified")
)

// PaymentVerifier checks with the payment provider whether a checkout
// session identified by an opaque session ID has been paid for the given
// event and user. Implementations must bound the call with a timeout.
type PaymentVerifier interface {
	VerifySession(ctx context.Context, sessionID, eventID, userID string) (paid bool, err error)
}
