package services

import (
	"context"
	"fmt"
	"log/slog"

	"congregationsite/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRSVPConfirmation sends the "rsvp_confirmation" template. The same template covers
// confirmed and waitlisted reservations.
func (s *emailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPEmailData) error {
	return s.send(ctx, "rsvp_confirmation", data)
}

// SendRSVPCancellation sends the "rsvp_cancellation" template.
func (s *emailService) SendRSVPCancellation(ctx context.Context, data *domain.RSVPEmailData) error {
	return s.send(ctx, "rsvp_cancellation", data)
}

func (s *emailService) send(ctx context.Context, templateName string, data *domain.RSVPEmailData) error {
	if data == nil {
		return fmt.Errorf("%s data is nil", templateName)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	messageID, err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", templateName, "message_id", messageID)
	return nil
}
