package email

import (
	"testing"
	"time"

	"congregationsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmailData(status domain.RSVPStatus) *domain.RSVPEmailData {
	return &domain.RSVPEmailData{
		Email:            "ruth@example.org",
		Name:             "Ruth <Moabite>",
		ConfirmationCode: "AB12CD34",
		Status:           status,
		PartySize:        3,
		EventTitle:       "Harvest Supper",
		EventStartsAt:    time.Date(2026, 11, 1, 18, 30, 0, 0, time.UTC),
		EventLocation:    "Fellowship Hall",
	}
}

func TestTemplateRenderer_Confirmation(t *testing.T) {
	r := NewTemplateRenderer()

	subject, html, text, err := r.Render("rsvp_confirmation", testEmailData(domain.RSVPStatusConfirmed))
	require.NoError(t, err)
	assert.Equal(t, "Confirmed: Harvest Supper (AB12CD34)", subject)
	assert.Contains(t, text, "is confirmed for a party of 3")
	assert.Contains(t, text, "Where: Fellowship Hall")
	assert.Contains(t, text, "Sunday, November 1, 2026 at 6:30 PM UTC")
	assert.Contains(t, html, "Ruth &lt;Moabite&gt;")
	assert.NotContains(t, html, "waitlist.")
}

func TestTemplateRenderer_Waitlisted(t *testing.T) {
	r := NewTemplateRenderer()

	subject, html, text, err := r.Render("rsvp_confirmation", testEmailData(domain.RSVPStatusWaitlisted))
	require.NoError(t, err)
	assert.Equal(t, "Waitlisted: Harvest Supper (AB12CD34)", subject)
	assert.Contains(t, text, "added to the waitlist")
	assert.Contains(t, html, "added to the waitlist")
}

func TestTemplateRenderer_Cancellation(t *testing.T) {
	r := NewTemplateRenderer()

	subject, _, text, err := r.Render("rsvp_cancellation", testEmailData(domain.RSVPStatusCancelled))
	require.NoError(t, err)
	assert.Equal(t, "Cancelled: Harvest Supper (AB12CD34)", subject)
	assert.Contains(t, text, "AB12CD34 for Harvest Supper")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("welcome", testEmailData(domain.RSVPStatusConfirmed))
	assert.Error(t, err)
}
