package connectors

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConnectors(t *testing.T) *Connectors {
	t.Helper()

	return New(Options{Guard: &Guard{AllowLoopback: true}}, slog.Default())
}

func TestDoRequest_JSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Ana"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	defer server.Close()

	c := testConnectors(t)

	result, err := c.DoRequest(context.Background(), HTTPRequest{
		URL:    server.URL,
		Method: "POST",
		Body:   map[string]any{"name": "Ana"},
	})
	require.NoError(t, err)

	assert.Equal(t, 200, result["status_code"])
	assert.Equal(t, map[string]any{"id": float64(42)}, result["json"])
}

func TestDoRequest_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	c := testConnectors(t)

	_, err := c.DoRequest(context.Background(), HTTPRequest{URL: server.URL})
	require.Error(t, err)

	httpErr := &HTTPError{}
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestDoRequest_GuardRunsBeforeDial(t *testing.T) {
	dialed := false

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		dialed = true
	}))
	defer server.Close()

	c := New(Options{Guard: &Guard{}}, slog.Default())

	_, err := c.DoRequest(context.Background(), HTTPRequest{URL: server.URL})
	require.Error(t, err)
	assert.True(t, IsTargetRejected(err))
	assert.False(t, dialed, "guard must reject before any network call")
}

func TestSendSlack_PostShape(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := testConnectors(t)

	_, err := c.SendSlack(context.Background(), server.URL, "deal closed")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "deal closed"}, received)
}

func TestSendTwilioMessage_FormEncodedBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "whatsapp:+15550001111", r.PostForm.Get("From"))
		assert.Equal(t, "whatsapp:+15552223333", r.PostForm.Get("To"))
		assert.Equal(t, "hello", r.PostForm.Get("Body"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer server.Close()

	c := testConnectors(t)
	c.TwilioBaseURL = server.URL

	result, err := c.SendTwilioMessage(context.Background(), "AC123", "secret", "whatsapp:+15550001111", "whatsapp:+15552223333", "hello")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result["status_code"])
}

func TestSendWhatsAppMeta_GraphShape(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/555000111/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	c := testConnectors(t)
	c.MetaGraphURL = server.URL

	_, err := c.SendWhatsAppMeta(context.Background(), "token-1", "555000111", "+15552223333", "hi")
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", received["messaging_product"])
	assert.Equal(t, "+15552223333", received["to"])
	assert.Equal(t, map[string]any{"body": "hi"}, received["text"])
}

func TestSendTelegram_SendMessage(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot42:token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := testConnectors(t)
	c.TelegramBaseURL = server.URL

	_, err := c.SendTelegram(context.Background(), "42:token", "-100200", "ping")
	require.NoError(t, err)
	assert.Equal(t, "-100200", received["chat_id"])
	assert.Equal(t, "ping", received["text"])
}

func TestChatCompletion_RequestShape(t *testing.T) {
	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "summary text"}}],
			"usage": {"total_tokens": 12}
		}`))
	}))
	defer server.Close()

	c := testConnectors(t)
	c.OpenAIBaseURL = server.URL

	result, err := c.ChatCompletion(context.Background(), CompletionRequest{
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		Prompt:      "summarize this lead",
		Temperature: 0.2,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", received["model"])
	assert.Equal(t, "summary text", result["completion"])

	messages, _ := received["messages"].([]any)
	require.Len(t, messages, 1)
}

func TestChatCompletion_MissingKeyOrPrompt(t *testing.T) {
	c := testConnectors(t)

	_, err := c.ChatCompletion(context.Background(), CompletionRequest{Prompt: "p"})
	assert.Error(t, err)

	_, err = c.ChatCompletion(context.Background(), CompletionRequest{APIKey: "k"})
	assert.Error(t, err)
}
