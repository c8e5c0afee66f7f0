package chat

import (
	"context"
	"errors"
	"fmt"

	"astrin/internal/remote"
)

const (
	PathChat    = "/api/chat"
	PathHistory = "/api/chat/history"
)

var errMissingResponse = errors.New("missing response field")

// HTTPTransport talks to the gateway chat endpoint. It never retries: a
// failed turn is reported to the user, who may submit again.
type HTTPTransport struct {
	client *remote.Client
}

func NewHTTPTransport(rc *remote.Client) *HTTPTransport {
	return &HTTPTransport{client: rc.WithRetry(remote.SingleAttempt())}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response *string `json:"response"`
}

func (t *HTTPTransport) Send(ctx context.Context, text string) (string, error) {
	var out chatResponse
	if err := t.client.PostJSON(ctx, PathChat, chatRequest{Message: text}, &out); err != nil {
		return "", err
	}
	if out.Response == nil {
		return "", &remote.ParseError{URL: t.client.BaseURL() + PathChat, Err: errMissingResponse}
	}
	return *out.Response, nil
}

// HistoryClient persists the conversation to the gateway.
type HistoryClient struct {
	client  *remote.Client
	enabled bool
}

func NewHistoryClient(rc *remote.Client) *HistoryClient {
	return &HistoryClient{client: rc.WithRetry(remote.SingleAttempt()), enabled: true}
}

// SetEnabled enables or disables persistence
func (c *HistoryClient) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// SaveHistory posts the full message array. The response body is ignored.
func (c *HistoryClient) SaveHistory(ctx context.Context, messages []Message) error {
	if !c.enabled {
		return nil
	}
	return c.client.PostJSON(ctx, PathHistory, messages, nil)
}

// List returns the most recent limit messages the gateway has stored.
func (c *HistoryClient) List(ctx context.Context, limit int) ([]Message, error) {
	var out []Message
	if err := c.client.GetJSON(ctx, fmt.Sprintf("%s?limit=%d", PathHistory, limit), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Message{}
	}
	return out, nil
}
