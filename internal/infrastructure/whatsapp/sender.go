package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/payment-reminder-api/internal/config"
)

// Sender delivers text messages to customers via the WhatsApp Business Cloud API.
type Sender interface {
	Send(ctx context.Context, from, to, text string) (messageID string, err error)
}

type sender struct {
	apiURL   string
	apiToken string
	client   *http.Client
}

func NewSender(cfg *config.Config) (Sender, error) {
	if cfg.WhatsAppAPIURL == "" {
		return nil, fmt.Errorf("WHATSAPP_API_URL not configured")
	}
	return &sender{
		apiURL:   cfg.WhatsAppAPIURL,
		apiToken: cfg.WhatsAppAPIToken,
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type textPayload struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	From             string `json:"from,omitempty"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (s *sender) Send(ctx context.Context, from, to, text string) (string, error) {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               FormatPhoneNumber(to),
		From:             FormatPhoneNumber(from),
		Type:             "text",
	}
	payload.Text.Body = text

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("whatsapp API returned status %d", resp.StatusCode)
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil // accepted; message id is best-effort
	}
	if len(out.Messages) == 0 {
		return "", nil
	}
	return out.Messages[0].ID, nil
}

// FormatPhoneNumber strips non-digits and prefixes the default country code
// when absent.
func FormatPhoneNumber(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if strings.HasPrefix(cleaned, "91") {
		return cleaned
	}
	return "91" + cleaned
}
