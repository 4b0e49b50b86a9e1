// Package connectors implements the side-effecting provider adapters the
// node interpreter drives: generic HTTP, AI completion, WhatsApp, Telegram,
// Slack, SMS and outbound webhooks. Each adapter preserves the exact wire
// shape of its provider.
package connectors

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const defaultTimeout = 120 * time.Second

// EmailSender is the email collaborator boundary. The CRM's own mailer
// implements it; tests stub it.
type EmailSender interface {
	SendEmail(ctx context.Context, tenantID, to, subject, html string) error
}

// Connectors bundles the outbound adapters behind one shared HTTP client
// and SSRF guard.
type Connectors struct {
	client *http.Client
	guard  *Guard
	logger *slog.Logger

	// Base endpoints are fields so tests can point adapters at local
	// servers. Zero values mean the real provider endpoints.
	OpenAIBaseURL   string
	TelegramBaseURL string
	TwilioBaseURL   string
	MetaGraphURL    string
}

// Options configures the shared connector stack.
type Options struct {
	Timeout time.Duration
	Guard   *Guard
}

// New creates the connector stack.
func New(opts Options, logger *slog.Logger) *Connectors {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	guard := opts.Guard
	if guard == nil {
		guard = &Guard{}
	}

	return &Connectors{
		client: &http.Client{Timeout: timeout},
		guard:  guard,
		logger: logger.With("module", "connectors"),
	}
}

// GuardURL exposes the SSRF check for callers that validate before building
// a request.
func (c *Connectors) GuardURL(rawURL string) error {
	return c.guard.Check(rawURL)
}
