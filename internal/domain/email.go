package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
// It returns the provider message id on success.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) (messageID string, err error)
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RSVPEmailData holds data for reservation confirmation and cancellation emails.
type RSVPEmailData struct {
	Email            string
	Name             string
	ConfirmationCode string
	Status           RSVPStatus
	PartySize        int
	EventTitle       string
	EventStartsAt    time.Time
	EventLocation    string
}

// Waitlisted is a template helper.
func (d *RSVPEmailData) Waitlisted() bool {
	return d.Status == RSVPStatusWaitlisted
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRSVPConfirmation(ctx context.Context, data *RSVPEmailData) error
	SendRSVPCancellation(ctx context.Context, data *RSVPEmailData) error
}
