package services

import (
	"context"
	"fmt"
	"log"

	"teamregistry/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendVerificationCode sends the email verification code using the "verification_code" template.
func (s *emailService) SendVerificationCode(ctx context.Context, data *domain.VerificationCodeEmailData) error {
	if data == nil {
		return fmt.Errorf("verification code email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("verification_code", data)
	if err != nil {
		return fmt.Errorf("failed to render verification_code template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send verification code email: %w", err)
	}
	log.Printf("[EMAIL] Verification code sent to %s", data.Email)
	return nil
}

// SendInvitation sends the team invitation email using the "invitation" template.
func (s *emailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("invitation", data)
	if err != nil {
		return fmt.Errorf("failed to render invitation template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	log.Printf("[EMAIL] Invitation sent to %s", data.Email)
	return nil
}

// SendWelcomeMessage sends a welcome email using the "welcome" template and the given data.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render welcome template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	log.Printf("[EMAIL] Welcome email sent to %s", data.Email)
	return nil
}
