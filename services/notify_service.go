package services

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends appointment reminder emails through SendGrid. A nil
// Mailer (no API key configured) disables the mail step without
// touching the notify endpoint itself.
type Mailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewMailer(apiKey, fromAddress, fromName string) *Mailer {
	if apiKey == "" {
		return nil
	}
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

// SendReminder mails the patient about an upcoming appointment. Errors
// are logged, not returned: the upstream notification already happened
// and a mail hiccup should not fail the request.
func (m *Mailer) SendReminder(ctx context.Context, toAddress, toName, appointmentDate string) {
	subject := "Appointment reminder"
	body := fmt.Sprintf("Hello %s,\n\nThis is a reminder for your appointment on %s.\n\nIf you need to reschedule, please contact the practice.", toName, appointmentDate)
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(toName, toAddress), body, "")

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("[MAIL] reminder to %s failed: %v", toAddress, err)
		return
	}
	if resp.StatusCode >= 300 {
		log.Printf("[MAIL] reminder to %s rejected: status %d", toAddress, resp.StatusCode)
	}
}
