package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPRequest describes one outbound call to an arbitrary user-configured
// endpoint. Body may be a string (sent verbatim) or any JSON-serializable
// value.
type HTTPRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    any
}

// DoRequest issues an arbitrary HTTP request after passing the SSRF guard.
// The response is returned as {status_code, body[, json]}; the json key is
// present when the body parses as JSON.
func (c *Connectors) DoRequest(ctx context.Context, req HTTPRequest) (map[string]any, error) {
	if err := c.guard.Check(req.URL); err != nil {
		return nil, err
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader

	contentType := ""

	switch body := req.Body.(type) {
	case nil:
	case string:
		if body != "" {
			reqBody = strings.NewReader(body)
			contentType = "application/json"
		}
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		reqBody = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	result := map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(respBody),
	}

	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		result["json"] = jsonBody
	}

	if resp.StatusCode >= 400 {
		return result, &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	return result, nil
}

// HTTPError represents an HTTP error response with its status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// postJSON is the shared helper for the fixed-endpoint providers. These
// endpoints are not user-configurable, so the SSRF guard does not apply.
func (c *Connectors) postJSON(ctx context.Context, url string, headers map[string]string, payload any) (map[string]any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
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

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		result = map[string]any{"body": string(respBody)}
	}

	result["status_code"] = resp.StatusCode

	return result, nil
}
