package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"teamregistry/internal/domain"
)

type invitationTokenRepository struct {
	DB *sql.DB
}

func NewInvitationTokenRepository(db *sql.DB) domain.InvitationTokenRepository {
	return &invitationTokenRepository{DB: db}
}

func (r *invitationTokenRepository) Create(ctx context.Context, t *domain.InvitationToken) error {
	query := `
		INSERT INTO invitation_tokens (token, registration_id, invited_email, leader_name, issued_at, expires_at, consumed)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query,
		t.Token, t.RegistrationID, t.InvitedEmail, t.LeaderName, t.IssuedAt, t.ExpiresAt, t.Consumed)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *invitationTokenRepository) GetByToken(ctx context.Context, token string) (*domain.InvitationToken, error) {
	query := `
		SELECT token, registration_id, invited_email, leader_name, issued_at, expires_at, consumed, consumed_at
		FROM invitation_tokens
		WHERE token = $1
	`
	t := &domain.InvitationToken{}
	var invitedEmail sql.NullString
	var consumedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, token).Scan(
		&t.Token, &t.RegistrationID, &invitedEmail, &t.LeaderName,
		&t.IssuedAt, &t.ExpiresAt, &t.Consumed, &consumedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	t.InvitedEmail = invitedEmail.String
	if consumedAt.Valid {
		t.ConsumedAt = &consumedAt.Time
	}
	return t, nil
}

// Consume is a compare-and-set guarded by consumed = FALSE and the expiry, so
// two concurrent redeems of the same token result in exactly one winner.
func (r *invitationTokenRepository) Consume(ctx context.Context, token string, at time.Time) (bool, error) {
	query := `
		UPDATE invitation_tokens
		SET consumed = TRUE, consumed_at = $2
		WHERE token = $1 AND consumed = FALSE AND expires_at > $2
	`
	result, err := r.DB.ExecContext(ctx, query, token, at)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *invitationTokenRepository) RevokeByRegistrationID(ctx context.Context, registrationID string, at time.Time) (int64, error) {
	query := `
		UPDATE invitation_tokens
		SET consumed = TRUE, consumed_at = $2
		WHERE registration_id = $1 AND consumed = FALSE
	`
	result, err := r.DB.ExecContext(ctx, query, registrationID, at)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *invitationTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM invitation_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
