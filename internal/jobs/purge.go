package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"teamregistry/internal/domain"
)

// PurgeScheduler periodically removes expired verification codes and
// invitation tokens so the tables do not grow without bound.
type PurgeScheduler struct {
	cron              *cron.Cron
	logger            *slog.Logger
	verificationCodes domain.VerificationCodeRepository
	invitationTokens  domain.InvitationTokenRepository
}

func NewPurgeScheduler(
	logger *slog.Logger,
	verificationCodes domain.VerificationCodeRepository,
	invitationTokens domain.InvitationTokenRepository,
) *PurgeScheduler {
	s := &PurgeScheduler{
		cron:              cron.New(cron.WithLocation(time.UTC)),
		logger:            logger,
		verificationCodes: verificationCodes,
		invitationTokens:  invitationTokens,
	}
	// Hourly is frequent enough; expired rows are already invisible to reads.
	if _, err := s.cron.AddFunc("@hourly", s.runPurge); err != nil {
		logger.Error("failed to register purge job", "error", err)
	}
	return s
}

// Start begins the scheduler in its own goroutines.
func (s *PurgeScheduler) Start() {
	s.cron.Start()
	s.logger.Info("purge scheduler started")
}

// Stop halts scheduling and waits for a running job to finish.
func (s *PurgeScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("purge scheduler stopped")
}

func (s *PurgeScheduler) runPurge() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("purge job panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()

	codes, err := s.verificationCodes.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error("failed to purge expired verification codes", "error", err)
	}

	tokens, err := s.invitationTokens.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error("failed to purge expired invitation tokens", "error", err)
	}

	s.logger.Info("purge job completed",
		"verification_codes_deleted", codes,
		"invitation_tokens_deleted", tokens,
	)
}
