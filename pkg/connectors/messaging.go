package connectors

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	metaGraphBaseURL    = "https://graph.facebook.com/v19.0"
	telegramBaseURL     = "https://api.telegram.org"
	twilioBaseURL       = "https://api.twilio.com"
	twilioMessagesPath  = "/2010-04-01/Accounts/%s/Messages.json"
	whatsappMessageType = "whatsapp"
)

// SendWhatsAppMeta sends a text message through the Meta WhatsApp Business
// Graph API: POST JSON with bearer auth and messaging_product=whatsapp.
func (c *Connectors) SendWhatsAppMeta(ctx context.Context, accessToken, phoneNumberID, to, message string) (map[string]any, error) {
	base := c.MetaGraphURL
	if base == "" {
		base = metaGraphBaseURL
	}

	payload := map[string]any{
		"messaging_product": whatsappMessageType,
		"to":                to,
		"type":              "text",
		"text":              map[string]any{"body": message},
	}

	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
	}

	resp, err := c.postJSON(ctx, fmt.Sprintf("%s/%s/messages", base, phoneNumberID), headers, payload)
	if err != nil {
		return nil, fmt.Errorf("whatsapp send failed: %w", err)
	}

	return resp, nil
}

// SendTwilioMessage sends a message through the Twilio Messages API: POST
// form-encoded with basic auth. Used for both the WhatsApp provider (with
// "whatsapp:" prefixed numbers) and plain SMS.
func (c *Connectors) SendTwilioMessage(ctx context.Context, accountSID, authToken, from, to, body string) (map[string]any, error) {
	base := c.TwilioBaseURL
	if base == "" {
		base = twilioBaseURL
	}

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := base + fmt.Sprintf(twilioMessagesPath, accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(accountSID, authToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(respBody),
	}, nil
}

// SendTelegram sends a message through the Telegram Bot API sendMessage
// method.
func (c *Connectors) SendTelegram(ctx context.Context, botToken, chatID, text string) (map[string]any, error) {
	base := c.TelegramBaseURL
	if base == "" {
		base = telegramBaseURL
	}

	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}

	resp, err := c.postJSON(ctx, fmt.Sprintf("%s/bot%s/sendMessage", base, botToken), nil, payload)
	if err != nil {
		return nil, fmt.Errorf("telegram send failed: %w", err)
	}

	return resp, nil
}

// SendSlack posts a message to a Slack incoming webhook.
func (c *Connectors) SendSlack(ctx context.Context, webhookURL, text string) (map[string]any, error) {
	resp, err := c.postJSON(ctx, webhookURL, nil, map[string]any{"text": text})
	if err != nil {
		return nil, fmt.Errorf("slack send failed: %w", err)
	}

	return resp, nil
}
