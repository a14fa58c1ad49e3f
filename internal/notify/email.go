// Package notify implements the outbox dispatchers used to deliver
// notifications: the send-email function endpoint and a Kafka topic.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"waseet-api/internal/outbox"
)

type emailRequest struct {
	Type   string          `json:"type"`
	Record json.RawMessage `json:"record"`
}

// EmailDispatcher posts {type, record} to the remote send-email function,
// which picks the template by type.
type EmailDispatcher struct {
	url    string
	key    string
	client *http.Client
}

func NewEmailDispatcher(url, key string, timeout time.Duration) *EmailDispatcher {
	return &EmailDispatcher{
		url:    url,
		key:    key,
		client: &http.Client{Timeout: timeout},
	}
}

func (d *EmailDispatcher) Dispatch(ctx context.Context, msg outbox.Message) error {
	body, err := json.Marshal(emailRequest{Type: msg.Type, Record: payloadOrEmpty(msg.Payload)})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", msg.Id.String())
	if d.key != "" {
		req.Header.Set("Authorization", "Bearer "+d.key)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send-email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send-email: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	return nil
}

func payloadOrEmpty(p json.RawMessage) json.RawMessage {
	if len(p) == 0 {
		return json.RawMessage("{}")
	}

	return p
}
