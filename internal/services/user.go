package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"teamregistry/internal/domain"
)

const defaultRole = "attendee"

type userService struct {
	userRepo     domain.UserRepository
	roleRepo     domain.RoleRepository
	verification domain.VerificationService
	hasher       domain.PasswordHasher
	tokenIssuer  domain.TokenIssuer
	tokenExpiry  time.Duration
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewUserService creates a UserService with the given repositories and auth ports.
func NewUserService(
	userRepo domain.UserRepository,
	roleRepo domain.RoleRepository,
	verification domain.VerificationService,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.UserService {
	return &userService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		verification: verification,
		hasher:       hasher,
		tokenIssuer:  tokenIssuer,
		tokenExpiry:  tokenExpiry,
		emailService: emailService,
		logger:       logger,
	}
}

func (s *userService) RequestVerification(ctx context.Context, email string) error {
	return s.verification.Issue(ctx, email)
}

// SignUp runs verify, then create account, then consume, in that order: a
// crash mid-sequence leaves the code valid for retry instead of burning it
// without an account.
func (s *userService) SignUp(ctx context.Context, input domain.SignUpInput) (string, *domain.User, error) {
	email := normalizeEmail(input.Email)
	if !emailRegexp.MatchString(email) {
		return "", nil, domain.ErrInvalidInput
	}
	if len(input.Password) < 8 {
		return "", nil, domain.ErrInvalidInput
	}

	if err := s.verification.Verify(ctx, email, input.Code); err != nil {
		return "", nil, err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return "", nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, input.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(email, strings.TrimSpace(input.Name), strings.TrimSpace(input.LastName), hash, salt, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return "", nil, domain.ErrDuplicateEmail
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	roleRecord, err := s.roleRepo.GetByCode(ctx, defaultRole)
	if err != nil {
		return "", nil, fmt.Errorf("get role %q: %w", defaultRole, err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, roleRecord.ID); err != nil {
		return "", nil, fmt.Errorf("assign role: %w", err)
	}

	if err := s.verification.Consume(ctx, email); err != nil {
		return "", nil, fmt.Errorf("consume verification code: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: email, FirstName: user.Name}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "err", err)
		}
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) LogIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.issueToken(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *userService) issueToken(ctx context.Context, user *domain.User) (string, error) {
	roles, err := s.roleRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("load roles: %w", err)
	}
	roleCodes := make([]string, len(roles))
	for i, r := range roles {
		roleCodes[i] = r.Code
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, roleCodes, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
