package engine

import (
	"context"
	"fmt"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/template"
)

func (i *Interpreter) runEmail(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	if i.email == nil {
		return nil, fmt.Errorf("email sender is not configured")
	}

	to := template.InterpolateString(node.ConfigString("to"), ectx)
	subject := template.InterpolateString(node.ConfigString("subject"), ectx)

	if to == "" {
		return nil, fmt.Errorf("%w: to", ErrNodeConfigMissing)
	}

	if subject == "" {
		return nil, fmt.Errorf("%w: subject", ErrNodeConfigMissing)
	}

	body := template.InterpolateString(node.ConfigString("body"), ectx)

	err := i.email.SendEmail(ctx, ectx.TenantID, to, subject, body)
	if err != nil {
		return nil, err
	}

	return map[string]any{"sent": true, "to": to}, nil
}

// runWhatsApp routes through Twilio or the Meta Graph API depending on which
// provider the tenant's credentials are configured for.
func (i *Interpreter) runWhatsApp(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	to := template.InterpolateString(node.ConfigString("to"), ectx)
	message := template.InterpolateString(node.ConfigString("message"), ectx)

	if to == "" || message == "" {
		return nil, fmt.Errorf("%w: to, message", ErrNodeConfigMissing)
	}

	creds, err := i.requireCredentials(ctx, ectx.TenantID, "whatsapp")
	if err != nil {
		return nil, err
	}

	if creds["provider"] == "twilio" {
		return i.connectors.SendTwilioMessage(ctx,
			creds["account_sid"], creds["auth_token"],
			"whatsapp:"+creds["from"], "whatsapp:"+to, message)
	}

	return i.connectors.SendWhatsAppMeta(ctx,
		creds["access_token"], creds["phone_number_id"], to, message)
}

func (i *Interpreter) runTelegram(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	message := template.InterpolateString(node.ConfigString("message"), ectx)
	if message == "" {
		return nil, fmt.Errorf("%w: message", ErrNodeConfigMissing)
	}

	creds, err := i.requireCredentials(ctx, ectx.TenantID, "telegram")
	if err != nil {
		return nil, err
	}

	chatID := template.InterpolateString(node.ConfigString("chatId"), ectx)
	if chatID == "" {
		chatID = creds["chat_id"]
	}

	if chatID == "" {
		return nil, fmt.Errorf("%w: chatId", ErrNodeConfigMissing)
	}

	return i.connectors.SendTelegram(ctx, creds["bot_token"], chatID, message)
}

func (i *Interpreter) runSlack(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	message := template.InterpolateString(node.ConfigString("message"), ectx)
	if message == "" {
		return nil, fmt.Errorf("%w: message", ErrNodeConfigMissing)
	}

	creds, err := i.requireCredentials(ctx, ectx.TenantID, "slack")
	if err != nil {
		return nil, err
	}

	return i.connectors.SendSlack(ctx, creds["webhook_url"], message)
}

func (i *Interpreter) runSMS(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	to := template.InterpolateString(node.ConfigString("to"), ectx)
	message := template.InterpolateString(node.ConfigString("message"), ectx)

	if to == "" || message == "" {
		return nil, fmt.Errorf("%w: to, message", ErrNodeConfigMissing)
	}

	creds, err := i.requireCredentials(ctx, ectx.TenantID, "twilio")
	if err != nil {
		return nil, err
	}

	return i.connectors.SendTwilioMessage(ctx,
		creds["account_sid"], creds["auth_token"], creds["from"], to, message)
}

func (i *Interpreter) requireCredentials(ctx context.Context, tenantID, provider string) (map[string]string, error) {
	creds, err := i.credentials.GetIntegrationCredentials(ctx, tenantID, provider)
	if err != nil {
		return nil, err
	}

	if len(creds) == 0 {
		return nil, fmt.Errorf("no %s credentials configured for tenant %s", provider, tenantID)
	}

	return creds, nil
}
