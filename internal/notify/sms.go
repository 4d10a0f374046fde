package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioSender posts SMS messages through Twilio's REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TwilioSender) Configured() bool {
	return s.accountSID != "" && s.authToken != "" && s.from != ""
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) DeliveryResult {
	if !s.Configured() {
		return notConfigured("Twilio not configured")
	}
	if to == "" {
		return failed("SMS error: no destination number")
	}

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", s.from)
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return failed(fmt.Sprintf("SMS error: %v", err))
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return failed(fmt.Sprintf("SMS error: %v", err))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failed(fmt.Sprintf("SMS error: twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var parsed struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.SID != "" {
		return sent(fmt.Sprintf("SMS sent (%s)", parsed.SID))
	}
	return sent("SMS sent")
}

var _ SMSSender = (*TwilioSender)(nil)
