package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// VerificationCodeEmailData holds data for the email verification code email.
type VerificationCodeEmailData struct {
	Email            string
	Code             string
	ExpiresInMinutes int
}

// InvitationEmailData holds data for the team invitation email.
type InvitationEmailData struct {
	Email      string
	LeaderName string
	TeamName   string
	EventTitle string
	InviteLink string
	ExpiresAt  string
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email     string
	FirstName string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendVerificationCode(ctx context.Context, data *VerificationCodeEmailData) error
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
}
