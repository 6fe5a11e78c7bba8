package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"teamregistry/internal/domain"
)

const inviteTokenBytes = 32

type invitationService struct {
	registrationRepo domain.RegistrationRepository
	tokenRepo        domain.InvitationTokenRepository
	eventRepo        domain.EventRepository
	emailService     domain.EmailService
	logger           *slog.Logger
	inviteLinkBase   string
	tokenTTL         time.Duration
	maxTeamSize      int
}

// NewInvitationService creates an InvitationService. Tokens expire after
// tokenTTL; teams are capped at maxTeamSize members (leader excluded).
func NewInvitationService(
	registrationRepo domain.RegistrationRepository,
	tokenRepo domain.InvitationTokenRepository,
	eventRepo domain.EventRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	inviteLinkBase string,
	tokenTTL time.Duration,
	maxTeamSize int,
) domain.InvitationService {
	return &invitationService{
		registrationRepo: registrationRepo,
		tokenRepo:        tokenRepo,
		eventRepo:        eventRepo,
		emailService:     emailService,
		logger:           logger,
		inviteLinkBase:   inviteLinkBase,
		tokenTTL:         tokenTTL,
		maxTeamSize:      maxTeamSize,
	}
}

func (s *invitationService) Mint(ctx context.Context, registrationID, callerID, invitedEmail string) (*domain.InvitationToken, error) {
	invitedEmail = normalizeEmail(invitedEmail)
	if invitedEmail != "" && !emailRegexp.MatchString(invitedEmail) {
		return nil, domain.ErrInvalidInput
	}

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.LeaderUserID != callerID {
		return nil, domain.ErrForbidden
	}
	if reg.Status == domain.StatusRejected {
		return nil, domain.ErrInvalidInput
	}
	if invitedEmail != "" && reg.HasMember(invitedEmail) {
		return nil, domain.ErrDuplicateMember
	}

	count, err := s.registrationRepo.CountMembers(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("count team members: %w", err)
	}
	if count >= s.maxTeamSize {
		return nil, domain.ErrTeamFull
	}

	value, err := generateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}
	now := time.Now()
	token := &domain.InvitationToken{
		Token:          value,
		RegistrationID: registrationID,
		InvitedEmail:   invitedEmail,
		LeaderName:     reg.LeaderName,
		IssuedAt:       now,
		ExpiresAt:      now.Add(s.tokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("store invite token: %w", err)
	}

	// The token is minted either way; a failed email only loses the notification.
	if invitedEmail != "" && s.emailService != nil {
		event, err := s.eventRepo.GetByID(ctx, reg.EventID)
		eventTitle := ""
		if err == nil {
			eventTitle = event.Title
		}
		data := &domain.InvitationEmailData{
			Email:      invitedEmail,
			LeaderName: reg.LeaderName,
			TeamName:   reg.TeamName,
			EventTitle: eventTitle,
			InviteLink: s.inviteLinkBase + "?token=" + value,
			ExpiresAt:  token.ExpiresAt.Format(time.RFC1123),
		}
		if err := s.emailService.SendInvitation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "invitation email failed", "registration_id", registrationID, "err", err)
		}
	}

	return token, nil
}

// Redeem applies the ordered failure checks, then consumes the token with a
// store-level compare-and-set before appending the member. Two concurrent
// redeems of the same token resolve to exactly one success.
func (s *invitationService) Redeem(ctx context.Context, token string, redeemer domain.RedeemerIdentity) (*domain.RedeemResult, error) {
	redeemer.Email = normalizeEmail(redeemer.Email)
	if redeemer.Email == "" {
		return nil, domain.ErrInvalidInput
	}

	t, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invite token: %w", err)
	}
	now := time.Now()
	if t.Consumed {
		return nil, domain.ErrTokenConsumed
	}
	if t.Expired(now) {
		return nil, domain.ErrTokenExpired
	}
	if t.InvitedEmail != "" && t.InvitedEmail != redeemer.Email {
		return nil, domain.ErrEmailMismatch
	}

	reg, err := s.registrationRepo.GetByID(ctx, t.RegistrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if reg.HasMember(redeemer.Email) {
		return nil, domain.ErrDuplicateMember
	}
	if len(reg.Members) >= s.maxTeamSize {
		return nil, domain.ErrTeamFull
	}

	consumed, err := s.tokenRepo.Consume(ctx, token, now)
	if err != nil {
		return nil, fmt.Errorf("consume invite token: %w", err)
	}
	if !consumed {
		// Lost the race or expired between the read and the update.
		if now.After(t.ExpiresAt) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenConsumed
	}

	member := domain.TeamMember{
		Name:   redeemer.Name,
		Email:  redeemer.Email,
		UserID: redeemer.UserID,
	}
	if err := s.registrationRepo.AddMember(ctx, reg.ID, member); err != nil {
		if errors.Is(err, domain.ErrDuplicateMember) {
			return nil, domain.ErrDuplicateMember
		}
		return nil, fmt.Errorf("add team member: %w", err)
	}
	reg.Members = append(reg.Members, member)

	eventTitle := ""
	if event, err := s.eventRepo.GetByID(ctx, reg.EventID); err == nil {
		eventTitle = event.Title
	}
	return &domain.RedeemResult{
		Registration: reg,
		TeamName:     reg.TeamName,
		EventTitle:   eventTitle,
	}, nil
}

func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
