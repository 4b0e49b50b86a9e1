package engine

import (
	"context"
	"fmt"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/connectors"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/models"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/template"
)

func (i *Interpreter) runHTTPRequest(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	url := template.InterpolateString(node.ConfigString("url"), ectx)
	if url == "" {
		return nil, fmt.Errorf("%w: url", ErrNodeConfigMissing)
	}

	method := node.ConfigString("method")
	if method == "" {
		method = "GET"
	}

	return i.connectors.DoRequest(ctx, connectors.HTTPRequest{
		URL:     url,
		Method:  method,
		Headers: interpolateHeaders(node.Config["headers"], ectx),
		Body:    template.InterpolateObject(node.Config["body"], ectx),
	})
}

// runWebhook is an outbound POST like runHTTPRequest, except the body
// defaults to the event data when the node does not configure one.
func (i *Interpreter) runWebhook(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	url := template.InterpolateString(node.ConfigString("url"), ectx)
	if url == "" {
		return nil, fmt.Errorf("%w: url", ErrNodeConfigMissing)
	}

	method := node.ConfigString("method")
	if method == "" {
		method = "POST"
	}

	body, configured := node.Config["body"]
	if !configured {
		body = ectx.Data
	}

	return i.connectors.DoRequest(ctx, connectors.HTTPRequest{
		URL:     url,
		Method:  method,
		Headers: interpolateHeaders(node.Config["headers"], ectx),
		Body:    template.InterpolateObject(body, ectx),
	})
}

func (i *Interpreter) runAICompletion(ctx context.Context, node *models.Node, ectx *models.ExecutionContext) (map[string]any, error) {
	prompt := template.InterpolateString(node.ConfigString("prompt"), ectx)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt", ErrNodeConfigMissing)
	}

	apiKey, err := i.resolveAIKey(ctx, node, ectx.TenantID)
	if err != nil {
		return nil, err
	}

	model := node.ConfigString("model")
	if model == "" {
		model = i.opts.AIModel
	}

	temperature, _ := configNumber(node, "temperature")

	return i.connectors.ChatCompletion(ctx, connectors.CompletionRequest{
		APIKey:      apiKey,
		Model:       model,
		Prompt:      prompt,
		Temperature: temperature,
	})
}

// resolveAIKey falls back from node config to the tenant's stored openai
// credential to the deployment-wide default.
func (i *Interpreter) resolveAIKey(ctx context.Context, node *models.Node, tenantID string) (string, error) {
	apiKey := node.ConfigString("apiKey")
	if apiKey != "" {
		return apiKey, nil
	}

	creds, err := i.credentials.GetIntegrationCredentials(ctx, tenantID, "openai")
	if err != nil {
		return "", err
	}

	if creds["api_key"] != "" {
		return creds["api_key"], nil
	}

	if i.opts.AIAPIKey != "" {
		return i.opts.AIAPIKey, nil
	}

	return "", fmt.Errorf("%w: apiKey", ErrNodeConfigMissing)
}

func interpolateHeaders(raw any, ectx *models.ExecutionContext) map[string]string {
	configured, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	headers := make(map[string]string, len(configured))

	for key, value := range configured {
		s, isString := value.(string)
		if !isString {
			continue
		}

		headers[key] = template.InterpolateString(s, ectx)
	}

	return headers
}
