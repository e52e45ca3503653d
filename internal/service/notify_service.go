package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// NotifyService sends account lifecycle emails via Amazon SES. All sends
// are best-effort; when no from-address is configured the service is
// disabled and every send is a logged no-op.
type NotifyService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewNotifyService creates a new notification service
func NewNotifyService(ctx context.Context, awsRegion, fromEmail, fromName string) (*NotifyService, error) {
	if fromEmail == "" {
		log.Println("Notification service disabled: from address not configured")
		return &NotifyService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Notification service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &NotifyService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// NewDisabledNotifyService returns a notifier that skips every send.
// Used by tests and the admin CLI.
func NewDisabledNotifyService() *NotifyService {
	return &NotifyService{enabled: false}
}

// SendWelcome sends a welcome email to a new family account
func (s *NotifyService) SendWelcome(ctx context.Context, toEmail, familyName string) error {
	subject := "Welcome to KidPoints!"
	body := fmt.Sprintf(`Hi %s,

Your family account is ready. Add your children, set up some activities,
and start tracking points together.

---
This is an automated email from KidPoints. Please do not reply.
`, familyName)

	return s.send(ctx, toEmail, subject, body)
}

// SendAccountDeleted confirms that an account and all its data were removed
func (s *NotifyService) SendAccountDeleted(ctx context.Context, toEmail, familyName string) error {
	subject := "Your KidPoints account has been deleted"
	body := fmt.Sprintf(`Hi %s,

Your family account and all associated data have been deleted. If this
wasn't you, please contact support.

---
This is an automated email from KidPoints. Please do not reply.
`, familyName)

	return s.send(ctx, toEmail, subject, body)
}

func (s *NotifyService) send(ctx context.Context, toEmail, subject, textBody string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): %s to %s", subject, toEmail)
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
