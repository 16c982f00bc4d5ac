package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/NujabesCode/itsmycolor-authgate/internal/models"
)

// EmailService defines the interface for sending review outcome notices.
type EmailService interface {
	SendBrandReviewNotice(ctx context.Context, email, brandName string, status models.BrandStatus) error
}

// AWSSESEmailService sends emails using AWS SES.
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service.
func NewAWSSESEmailService(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendBrandReviewNotice tells a brand owner the outcome of a review decision.
// Only approval and rejection produce mail; resubmission requests are surfaced
// in the seller console instead.
func (s *AWSSESEmailService) SendBrandReviewNotice(ctx context.Context, email, brandName string, status models.BrandStatus) error {
	var subject, textBody string

	switch status {
	case models.BrandStatusApproved:
		subject = fmt.Sprintf("Your brand %q has been approved", brandName)
		textBody = fmt.Sprintf(`Good news!

Your brand %q passed review and is now approved. You can access the seller console and start managing your brand.

This is an automated message. Please do not reply to this email.
`, brandName)
	case models.BrandStatusRejected:
		subject = fmt.Sprintf("Your brand %q was not approved", brandName)
		textBody = fmt.Sprintf(`We reviewed your brand %q and could not approve it at this time.

If you believe this was in error, or once you have addressed the review feedback, you may be invited to resubmit from the seller console.

This is an automated message. Please do not reply to this email.
`, brandName)
	default:
		return fmt.Errorf("no notice template for status %s", status)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send brand review notice via SES",
			slog.String("brand", brandName),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("brand review notice sent",
		slog.String("brand", brandName),
		slog.String("status", string(status)),
		slog.String("message_id", *result.MessageId))

	return nil
}

// NoopEmailService satisfies EmailService when outbound mail is disabled.
type NoopEmailService struct{}

func (NoopEmailService) SendBrandReviewNotice(ctx context.Context, email, brandName string, status models.BrandStatus) error {
	return nil
}
