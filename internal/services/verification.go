package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"teamregistry/internal/domain"
)

const verificationCodeDigits = 6

var (
	emailRegexp            = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	verificationCodeRegexp = regexp.MustCompile(`^\d{6}$`)
)

type verificationService struct {
	repo         domain.VerificationCodeRepository
	emailService domain.EmailService
	ttl          time.Duration
}

// NewVerificationService creates a VerificationService that stores hashed
// codes with the given TTL and emails them on issue.
func NewVerificationService(repo domain.VerificationCodeRepository, emailService domain.EmailService, ttl time.Duration) domain.VerificationService {
	return &verificationService{
		repo:         repo,
		emailService: emailService,
		ttl:          ttl,
	}
}

func (s *verificationService) Issue(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return domain.ErrInvalidInput
	}
	code, err := generateNumericCode(verificationCodeDigits)
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	expiresAt := time.Now().Add(s.ttl)
	if err := s.repo.Upsert(ctx, email, hashCode(code), expiresAt); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	if s.emailService != nil {
		data := &domain.VerificationCodeEmailData{
			Email:            email,
			Code:             code,
			ExpiresInMinutes: int(s.ttl.Minutes()),
		}
		if err := s.emailService.SendVerificationCode(ctx, data); err != nil {
			return fmt.Errorf("send verification code email: %w", err)
		}
	}
	return nil
}

// Verify checks the code against the live record for the email and leaves
// the record intact so the caller can consume it after its own work succeeds.
// An expired or absent record surfaces as ErrNotFound.
func (s *verificationService) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if !verificationCodeRegexp.MatchString(code) {
		return domain.ErrCodeMismatch
	}
	record, err := s.repo.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get verification code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(record.CodeHash), []byte(hashCode(code))) != 1 {
		return domain.ErrCodeMismatch
	}
	return nil
}

func (s *verificationService) Consume(ctx context.Context, email string) error {
	if err := s.repo.Delete(ctx, normalizeEmail(email)); err != nil {
		return fmt.Errorf("delete verification code: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func generateNumericCode(digits int) (string, error) {
	const digitspace = "0123456789"
	b := make([]byte, digits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = digitspace[int(b[i])%len(digitspace)]
	}
	return string(b), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
