package connectors

import (
	"context"
	"errors"
	"fmt"
)

const openAIChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// CompletionRequest is one call to an OpenAI-style chat completion API.
type CompletionRequest struct {
	APIKey      string
	Model       string
	Prompt      string
	Temperature float64
}

// ChatCompletion calls the completion API and returns the first choice's
// message content plus usage metadata.
func (c *Connectors) ChatCompletion(ctx context.Context, req CompletionRequest) (map[string]any, error) {
	if req.APIKey == "" {
		return nil, errors.New("missing API key")
	}

	if req.Prompt == "" {
		return nil, errors.New("missing prompt")
	}

	url := c.OpenAIBaseURL
	if url == "" {
		url = openAIChatCompletionsURL
	}

	payload := map[string]any{
		"model": req.Model,
		"messages": []any{
			map[string]any{"role": "user", "content": req.Prompt},
		},
		"temperature": req.Temperature,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + req.APIKey,
	}

	resp, err := c.postJSON(ctx, url, headers, payload)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}

	content := firstChoiceContent(resp)

	return map[string]any{
		"completion": content,
		"model":      req.Model,
		"usage":      resp["usage"],
	}, nil
}

func firstChoiceContent(resp map[string]any) string {
	choices, _ := resp["choices"].([]any)
	if len(choices) == 0 {
		return ""
	}

	choice, _ := choices[0].(map[string]any)
	message, _ := choice["message"].(map[string]any)
	content, _ := message["content"].(string)

	return content
}
