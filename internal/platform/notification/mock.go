package notification

import (
	"context"
	"errors"
	"sync"
)

// SentEmail records one SendEmail call made against a MockEmailSender.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender records sent email for assertions in tests.
type MockEmailSender struct {
	mu         sync.Mutex
	Sent       []SentEmail
	ShouldFail bool
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("email send failed")
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// SentWhatsApp records one SendWhatsApp call made against a MockWhatsAppSender.
type SentWhatsApp struct {
	To   string
	Body string
}

// MockWhatsAppSender records sent messages for assertions in tests.
type MockWhatsAppSender struct {
	mu         sync.Mutex
	Sent       []SentWhatsApp
	ShouldFail bool
}

func (m *MockWhatsAppSender) SendWhatsApp(ctx context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New("whatsapp send failed")
	}
	m.Sent = append(m.Sent, SentWhatsApp{To: to, Body: body})
	return nil
}
