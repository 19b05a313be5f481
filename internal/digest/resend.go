package digest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultResendEndpoint is the Resend transactional email API.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// ErrSendFailed indicates the Resend API rejected the digest.
var ErrSendFailed = errors.New("digest delivery failed")

// Sender delivers rendered digests through Resend.
type Sender struct {
	client    *http.Client
	endpoint  string
	apiKey    string
	from      string
	recipient string
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// NewSender creates a Resend sender.
func NewSender(apiKey, from, recipient string) *Sender {
	return &Sender{
		client:    &http.Client{Timeout: 30 * time.Second},
		endpoint:  DefaultResendEndpoint,
		apiKey:    apiKey,
		from:      from,
		recipient: recipient,
	}
}

// SetEndpoint overrides the API endpoint. Used in tests.
func (s *Sender) SetEndpoint(endpoint string) {
	s.endpoint = endpoint
}

// Send delivers one email and returns the Resend message ID.
func (s *Sender) Send(ctx context.Context, subject, htmlBody, textBody string) (string, error) {
	payload, err := json.Marshal(resendRequest{
		From:    s.from,
		To:      []string{s.recipient},
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %w", ErrSendFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, bytes.TrimSpace(body))
	}

	var parsed resendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: parsing response: %w", ErrSendFailed, err)
	}

	return parsed.ID, nil
}
