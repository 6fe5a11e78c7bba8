package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCodeMismatch is returned when the supplied verification code is wrong.
// An absent or expired code surfaces as ErrNotFound: expired records are
// treated as absent on every read path.
var ErrCodeMismatch = errors.New("verification code mismatch")

// VerificationCode is a single-use, time-bound code proving control of an
// email address prior to account creation. At most one live record exists
// per email; the stored value is a hash, never the code.
type VerificationCode struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationCodeRepository defines storage for email verification codes.
// Get must never return a record past its expiry.
type VerificationCodeRepository interface {
	// Upsert stores a new code for the email, superseding any prior record.
	Upsert(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	Get(ctx context.Context, email string) (*VerificationCode, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// VerificationService issues and checks email verification codes.
// Verify leaves the record intact; Consume deletes it after the caller's
// downstream use succeeded (verify, then create account, then consume).
type VerificationService interface {
	Issue(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
	Consume(ctx context.Context, email string) error
}
