package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teamregistry/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	tokenRepo        domain.InvitationTokenRepository
	paymentVerifier  domain.PaymentVerifier
	maxTeamSize      int
	contextTimeout   time.Duration
}

// NewRegistrationService creates a RegistrationService with the given
// repositories and the payment verification port used to gate paid events.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	tokenRepo domain.InvitationTokenRepository,
	paymentVerifier domain.PaymentVerifier,
	maxTeamSize int,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		tokenRepo:        tokenRepo,
		paymentVerifier:  paymentVerifier,
		maxTeamSize:      maxTeamSize,
		contextTimeout:   timeout,
	}
}

func (s *registrationService) Create(ctx context.Context, input domain.CreateRegistrationInput) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	input.LeaderEmail = normalizeEmail(input.LeaderEmail)
	if input.EventID == "" || input.LeaderUserID == "" || !emailRegexp.MatchString(input.LeaderEmail) {
		return nil, domain.ErrInvalidInput
	}
	seen := map[string]struct{}{input.LeaderEmail: {}}
	for i := range input.Members {
		email := normalizeEmail(input.Members[i].Email)
		if !emailRegexp.MatchString(email) {
			return nil, domain.ErrInvalidInput
		}
		if _, dup := seen[email]; dup {
			return nil, domain.ErrDuplicateMember
		}
		seen[email] = struct{}{}
		input.Members[i].Email = email
		input.Members[i].Attended = false
	}
	if len(input.Members) > s.maxTeamSize {
		return nil, domain.ErrTeamFull
	}

	event, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	now := time.Now()
	if !event.RegistrationOpen(now) {
		return nil, domain.ErrRegistrationClosed
	}

	// Paid events gate creation on a verified payment signal. The verifier
	// call is bounded by the service timeout; on provider error or timeout
	// the creation fails closed.
	if event.Paid {
		if input.PaymentSessionID == "" {
			return nil, domain.ErrPaymentRequired
		}
		paid, err := s.paymentVerifier.VerifySession(ctx, input.PaymentSessionID, event.ID, input.LeaderUserID)
		if err != nil || !paid {
			return nil, domain.ErrPaymentUnverified
		}
	}

	if _, err := s.registrationRepo.GetByEventAndLeader(ctx, event.ID, input.LeaderUserID); err == nil {
		return nil, domain.ErrDuplicateRegistration
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	reg := domain.NewRegistration(event.ID, input.LeaderUserID, input.LeaderName, input.LeaderEmail, input.TeamName, input.Members, now)
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		// The unique (event, leader) index is the authoritative guard; the
		// pre-check above only catches the common case early.
		if errors.Is(err, domain.ErrDuplicateRegistration) {
			return nil, domain.ErrDuplicateRegistration
		}
		if errors.Is(err, domain.ErrDuplicateMember) {
			return nil, domain.ErrDuplicateMember
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	return reg, nil
}

// TransitionStatus moves a pending registration to accepted or rejected.
// The store-level update is guarded by status = 'pending', so concurrent
// transitions resolve to one winner; the loser sees ErrInvalidTransition.
func (s *registrationService) TransitionStatus(ctx context.Context, registrationID, callerID string, to domain.RegistrationStatus) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if to != domain.StatusAccepted && to != domain.StatusRejected {
		return nil, domain.ErrInvalidTransition
	}

	reg, err := s.getOwned(ctx, registrationID, callerID)
	if err != nil {
		return nil, err
	}

	qrCode := ""
	if to == domain.StatusAccepted && reg.QRCode == "" {
		qrCode = uuid.NewString()
	}
	moved, err := s.registrationRepo.TransitionStatus(ctx, registrationID, to, qrCode)
	if err != nil {
		return nil, fmt.Errorf("transition status: %w", err)
	}
	if !moved {
		return nil, domain.ErrInvalidTransition
	}

	// A rejected registration's outstanding tokens stop being redeemable.
	if to == domain.StatusRejected {
		if _, err := s.tokenRepo.RevokeByRegistrationID(ctx, registrationID, time.Now()); err != nil {
			return nil, fmt.Errorf("revoke invite tokens: %w", err)
		}
	}

	updated, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return updated, nil
}

func (s *registrationService) CheckIn(ctx context.Context, registrationID, callerID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.getOwned(ctx, registrationID, callerID)
	if err != nil {
		return nil, err
	}
	if reg.Status != domain.StatusAccepted {
		return nil, domain.ErrNotAccepted
	}
	// Re-checking an already checked-in registration is a no-op success.
	ok, err := s.registrationRepo.SetCheckedIn(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("set checked in: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotAccepted
	}
	reg.CheckedIn = true
	return reg, nil
}

func (s *registrationService) MarkMemberAttended(ctx context.Context, registrationID, callerID, memberEmail string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	memberEmail = normalizeEmail(memberEmail)
	reg, err := s.getOwned(ctx, registrationID, callerID)
	if err != nil {
		return nil, err
	}
	if reg.Status != domain.StatusAccepted {
		return nil, domain.ErrNotAccepted
	}
	found := false
	for i := range reg.Members {
		if reg.Members[i].Email == memberEmail {
			found = true
			reg.Members[i].Attended = true
		}
	}
	if !found {
		return nil, domain.ErrMemberNotFound
	}
	ok, err := s.registrationRepo.SetMemberAttended(ctx, registrationID, memberEmail)
	if err != nil {
		return nil, fmt.Errorf("set member attended: %w", err)
	}
	if !ok {
		return nil, domain.ErrNotAccepted
	}
	return reg, nil
}

func (s *registrationService) ListMine(ctx context.Context, leaderUserID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByLeaderID(ctx, leaderUserID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	// Fetch events one by one (N+1). Keeps the implementation simple; a
	// leader rarely has more than a handful of registrations.
	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.RegistrationWithEvent{Registration: reg, Event: ev})
	}
	return result, nil
}

// getOwned loads the registration and authorizes the caller as the owner of
// its event (the organizer).
func (s *registrationService) getOwned(ctx context.Context, registrationID, callerID string) (*domain.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return reg, nil
}
