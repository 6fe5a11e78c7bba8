package email

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"teamregistry/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider       string
	FromAddress    string
	FromName       string
	SES            SESConfig
	SendGridAPIKey string
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES,
// "sendgrid" uses SendGrid; "noop" or unknown uses a no-op mailer.
func NewMailer(config MailerConfig) (domain.Mailer, error) {
	switch config.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: config.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.SES.AccessKeyID,
					config.SES.SecretAccessKey,
					"",
				),
			),
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
		}, nil
	case "sendgrid":
		if config.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid provider requires an API key")
		}
		return &sendGridMailer{
			apiKey:      config.SendGridAPIKey,
			fromAddress: config.FromAddress,
			fromName:    config.FromName,
		}, nil
	case "noop":
		return &noopMailer{}, nil
	default:
		log.Printf("[MAILER] Unknown email provider %q, using noop", config.Provider)
		return &noopMailer{}, nil
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
}

func (s *sesMailer) Send(to, subject, html, text string) error {
	source := s.fromAddress
	if s.fromName != "" {
		source = fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	}
	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	result, err := s.client.SendEmail(context.Background(), input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	log.Printf("[MAILER] Email sent via SES. MessageID: %s", aws.ToString(result.MessageId))
	return nil
}

type sendGridMailer struct {
	apiKey      string
	fromAddress string
	fromName    string
}

func (s *sendGridMailer) Send(to, subject, html, text string) error {
	from := mail.NewEmail(s.fromName, s.fromAddress)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, text, html)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

type noopMailer struct{}

func (n *noopMailer) Send(to, subject, html, text string) error {
	log.Println("[MAILER] Email would be sent (noop)", "to", to, "subject", subject)
	return nil
}
