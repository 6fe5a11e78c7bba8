package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"teamregistry/internal/domain"
)

func TestVerificationService_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	repo := &fakeVerificationRepo{}
	emails := &fakeEmailService{}
	svc := NewVerificationService(repo, emails, 15*time.Minute)

	if err := svc.Issue(ctx, "Alice@Example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emails.verificationSent) != 1 {
		t.Fatalf("expected 1 verification email, got %d", len(emails.verificationSent))
	}
	sent := emails.verificationSent[0]
	if sent.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %s", sent.Email)
	}
	if !verificationCodeRegexp.MatchString(sent.Code) {
		t.Fatalf("expected a 6-digit code, got %q", sent.Code)
	}

	// The stored record holds a hash, never the code itself.
	record := repo.codes["alice@example.com"]
	if record == nil {
		t.Fatal("expected a stored record")
	}
	if record.CodeHash == sent.Code {
		t.Error("code must not be stored in the clear")
	}

	if err := svc.Verify(ctx, "alice@example.com", sent.Code); err != nil {
		t.Fatalf("verify with the issued code failed: %v", err)
	}
	// Verify leaves the record intact.
	if err := svc.Verify(ctx, "alice@example.com", sent.Code); err != nil {
		t.Fatalf("verify must be repeatable before consume, got %v", err)
	}
}

func TestVerificationService_Verify_WrongCode(t *testing.T) {
	ctx := context.Background()
	repo := &fakeVerificationRepo{}
	emails := &fakeEmailService{}
	svc := NewVerificationService(repo, emails, 15*time.Minute)

	if err := svc.Issue(ctx, "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wrong := "000000"
	if emails.verificationSent[0].Code == wrong {
		wrong = "999999"
	}
	if err := svc.Verify(ctx, "alice@example.com", wrong); !errors.Is(err, domain.ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}
}

func TestVerificationService_Verify_MalformedCode(t *testing.T) {
	svc := NewVerificationService(&fakeVerificationRepo{}, &fakeEmailService{}, 15*time.Minute)

	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
		if err := svc.Verify(context.Background(), "alice@example.com", code); !errors.Is(err, domain.ErrCodeMismatch) {
			t.Errorf("code %q: expected ErrCodeMismatch, got %v", code, err)
		}
	}
}

func TestVerificationService_Verify_ExpiredTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	repo := &fakeVerificationRepo{codes: map[string]*domain.VerificationCode{
		"alice@example.com": {
			Email:     "alice@example.com",
			CodeHash:  hashCode("123456"),
			ExpiresAt: time.Now().Add(-time.Minute),
		},
	}}
	svc := NewVerificationService(repo, &fakeEmailService{}, 15*time.Minute)

	if err := svc.Verify(ctx, "alice@example.com", "123456"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired code, got %v", err)
	}
}

func TestVerificationService_Issue_SupersedesPriorCode(t *testing.T) {
	ctx := context.Background()
	repo := &fakeVerificationRepo{}
	emails := &fakeEmailService{}
	svc := NewVerificationService(repo, emails, 15*time.Minute)

	if err := svc.Issue(ctx, "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Issue(ctx, "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := emails.verificationSent[0].Code
	second := emails.verificationSent[1].Code
	if first != second {
		if err := svc.Verify(ctx, "alice@example.com", first); !errors.Is(err, domain.ErrCodeMismatch) {
			t.Fatalf("superseded code must no longer verify, got %v", err)
		}
	}
	if err := svc.Verify(ctx, "alice@example.com", second); err != nil {
		t.Fatalf("latest code must verify, got %v", err)
	}
}

func TestVerificationService_Consume(t *testing.T) {
	ctx := context.Background()
	repo := &fakeVerificationRepo{}
	emails := &fakeEmailService{}
	svc := NewVerificationService(repo, emails, 15*time.Minute)

	if err := svc.Issue(ctx, "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code := emails.verificationSent[0].Code
	if err := svc.Consume(ctx, "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Verify(ctx, "alice@example.com", code); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("consumed code must be gone, got %v", err)
	}
}

func TestVerificationService_Issue_InvalidEmail(t *testing.T) {
	svc := NewVerificationService(&fakeVerificationRepo{}, &fakeEmailService{}, 15*time.Minute)
	if err := svc.Issue(context.Background(), "not-an-email"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
