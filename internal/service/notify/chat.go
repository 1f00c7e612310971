package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ignite/seo-noc/internal/pkg/httpretry"
)

// ChatAdapter sends messages through a Telegram-shaped bot API, exactly the
// bot-API transport: HTTPS POST to
// {base_url}/bot{token}/sendMessage with a JSON body of
// {chat_id, text, parse_mode, message_thread_id?}.
type ChatAdapter struct {
	baseURL   string
	botToken  string
	client    httpretry.HTTPDoer
}

// NewChatAdapter builds a ChatAdapter. baseURL defaults to the public
// Telegram Bot API origin when empty, so self-hosted/compatible bot API
// servers can be substituted via config.
func NewChatAdapter(baseURL, botToken string, client httpretry.HTTPDoer) *ChatAdapter {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &ChatAdapter{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: botToken,
		client:   httpretry.NewRetryClient(client, 3),
	}
}

type sendMessageRequest struct {
	ChatID          string `json:"chat_id"`
	Text            string `json:"text"`
	ParseMode       string `json:"parse_mode"`
	MessageThreadID string `json:"message_thread_id,omitempty"`
}

// Send posts message to recipient (a chat id), routed to topic (a message
// thread id) when non-empty. On any response whose body
// mentions "thread"/"topic"/"message_thread_id", retry once without the
// thread id — a stale or deleted topic falls back to the general channel
// rather than silently dropping the notification.
func (a *ChatAdapter) Send(ctx context.Context, recipient, message, topic string) (bool, error) {
	ok, body, err := a.post(ctx, recipient, message, topic)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if topic != "" && mentionsThread(body) {
		ok, _, err := a.post(ctx, recipient, message, "")
		if err != nil {
			return false, err
		}
		return ok, nil
	}
	return false, nil
}

func (a *ChatAdapter) post(ctx context.Context, chatID, text, topic string) (bool, string, error) {
	payload := sendMessageRequest{
		ChatID:          chatID,
		Text:            text,
		ParseMode:       "HTML",
		MessageThreadID: topic,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, "", fmt.Errorf("notify: encoding chat payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", a.baseURL, a.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return false, "", fmt.Errorf("notify: building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return false, "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
	if resp.StatusCode == http.StatusOK {
		return true, string(respBody), nil
	}
	return false, string(respBody), nil
}

func mentionsThread(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "thread") || strings.Contains(lower, "topic") || strings.Contains(lower, "message_thread_id")
}
