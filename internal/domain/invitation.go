package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for invitation token operations.
var (
	// ErrTokenConsumed is returned when redeeming a token that was already used.
	ErrTokenConsumed = errors.New("invitation already used")
	// ErrTokenExpired is returned when redeeming a token past its expiry.
	ErrTokenExpired = errors.New("invitation expired")
	// ErrEmailMismatch is returned when the redeemer's email does not match the invited email.
	ErrEmailMismatch = errors.New("invitation was sent to a different email")
)

// InvitationToken is a single-use, time-bound credential allowing one
// redeemer to join a specific registration's team. The token value itself is
// the identifier and must be unguessable.
// swagger:model InvitationToken
type InvitationToken struct {
	Token          string     `json:"token"`
	RegistrationID string     `json:"registration_id"`
	// InvitedEmail restricts who may redeem; empty means open to any redeemer.
	InvitedEmail string     `json:"invited_email,omitempty"`
	LeaderName   string     `json:"leader_name"`
	IssuedAt     time.Time  `json:"issued_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Consumed     bool       `json:"consumed"`
	ConsumedAt   *time.Time `json:"consumed_at,omitempty"`
}

// Expired reports whether the token is past its expiry at t.
func (t *InvitationToken) Expired(at time.Time) bool {
	return at.After(t.ExpiresAt)
}

// InvitationTokenRepository defines storage operations for invitation tokens.
// Consume is the single-token correctness boundary: it is a conditional
// update guarded by consumed = false, so concurrent redeems of one token
// resolve to exactly one winner.
type InvitationTokenRepository interface {
	Create(ctx context.Context, token *InvitationToken) error
	GetByToken(ctx context.Context, token string) (*InvitationToken, error)
	// Consume marks the token used at the given time. Returns false when the
	// token was already consumed, expired, or absent.
	Consume(ctx context.Context, token string, at time.Time) (bool, error)
	// RevokeByRegistrationID invalidates all outstanding unconsumed tokens of
	// a registration, returning how many were revoked.
	RevokeByRegistrationID(ctx context.Context, registrationID string, at time.Time) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// RedeemerIdentity is the explicit identity of the user accepting an invitation.
type RedeemerIdentity struct {
	UserID string
	Name   string
	Email  string
}

// RedeemResult carries what the redeemer needs for a confirmation display.
type RedeemResult struct {
	Registration *Registration `json:"registration"`
	TeamName     string        `json:"team_name"`
	EventTitle   string        `json:"event_title"`
}

// InvitationService defines the invitation token protocol.
type InvitationService interface {
	// Mint issues a new token for the registration. Only the registration's
	// leader may mint; the team must be below the maximum size.
	Mint(ctx context.Context, registrationID, callerID, invitedEmail string) (*InvitationToken, error)
	// Redeem consumes the token and appends the redeemer to the team.
	Redeem(ctx context.Context, token string, redeemer RedeemerIdentity) (*RedeemResult, error)
}
