package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioWhatsAppSender delivers WhatsApp messages through the Twilio
// Messages REST endpoint.
type TwilioWhatsAppSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewTwilioWhatsAppSender builds a sender for the given Twilio account.
// from is the WhatsApp-enabled number, e.g. "+14155238886".
func NewTwilioWhatsAppSender(accountSID, authToken, from string, logger zerolog.Logger) *TwilioWhatsAppSender {
	return &TwilioWhatsAppSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    twilioAPIBase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (s *TwilioWhatsAppSender) SendWhatsApp(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	form := url.Values{}
	form.Set("From", "whatsapp:"+s.from)
	form.Set("To", "whatsapp:"+to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Str("to", to).Msg("twilio send failed")
		return fmt.Errorf("twilio send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Error().Int("status", resp.StatusCode).Str("to", to).
			Str("response", string(detail)).Msg("twilio rejected message")
		return fmt.Errorf("twilio send: status %d", resp.StatusCode)
	}

	s.logger.Debug().Str("to", to).Msg("whatsapp message sent")
	return nil
}
