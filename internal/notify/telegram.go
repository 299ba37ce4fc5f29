package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Telegram sends alert messages through the Telegram Bot API. When the token
// or chat ID is unset, sends are silently skipped so the monitor keeps
// running without notifications.
type Telegram struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
}

// sendMessage API request structure
type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func NewTelegram(token, chatID string) *Telegram {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	return &Telegram{
		token:   token,
		chatID:  chatID,
		apiBase: defaultAPIBase,
		client:  client,
	}
}

// Send delivers one message to the configured chat target
func (t *Telegram) Send(ctx context.Context, text string) error {
	if t.token == "" || t.chatID == "" {
		return nil
	}

	request := sendMessageRequest{
		ChatID: t.chatID,
		Text:   text,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	for i := 1; i <= 3; i++ {
		err = t.sendViaAPI(ctx, jsonData)
		if err == nil {
			return nil
		}

		// Wait before retry
		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("failed to send telegram message after 3 attempts: %w", err)
}

func (t *Telegram) sendViaAPI(ctx context.Context, jsonData []byte) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	return nil
}
