package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"teamregistry/internal/domain"
)

type verificationCodeRepository struct {
	DB *sql.DB
}

func NewVerificationCodeRepository(db *sql.DB) domain.VerificationCodeRepository {
	return &verificationCodeRepository{DB: db}
}

// Upsert supersedes any prior record for the email; the old code stops
// working the moment a new one is issued.
func (r *verificationCodeRepository) Upsert(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO verification_codes (email, code_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at
	`
	_, err := r.DB.ExecContext(ctx, query, email, codeHash, expiresAt)
	return err
}

// Get only returns live records; a row past its expiry is treated as absent.
func (r *verificationCodeRepository) Get(ctx context.Context, email string) (*domain.VerificationCode, error) {
	query := `
		SELECT email, code_hash, expires_at
		FROM verification_codes
		WHERE email = $1 AND expires_at > NOW()
	`
	vc := &domain.VerificationCode{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&vc.Email, &vc.CodeHash, &vc.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return vc, nil
}

func (r *verificationCodeRepository) Delete(ctx context.Context, email string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM verification_codes WHERE email = $1`, email)
	return err
}

func (r *verificationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
