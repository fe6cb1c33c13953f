// Package notification delivers appointment reminders over email and
// WhatsApp. Senders are small interfaces so services can be tested with
// in-memory fakes.
package notification

import "context"

// EmailSender sends a plain-text email to a single recipient.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// WhatsAppSender sends a WhatsApp message to a phone number in E.164 form.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, body string) error
}
