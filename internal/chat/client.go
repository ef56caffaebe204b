package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client generates a reply for an inbound user message.
type Client interface {
	Reply(ctx context.Context, userID, message string) (string, error)
}

// request is the chat API request body.
type request struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// response is the chat API response body.
type response struct {
	Reply string `json:"reply"`
}

// HTTPClient calls the internal chat API over HTTP.
type HTTPClient struct {
	url    string
	apiKey string
	httpc  *http.Client
}

// NewHTTPClient creates a chat API client. The x-api-key header is sent
// only when apiKey is non-empty.
func NewHTTPClient(url, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:    url,
		apiKey: apiKey,
		httpc:  &http.Client{Timeout: timeout},
	}
}

// Reply sends the user's message to the chat API and returns the reply
// text. A parseable response without a reply field yields "" and no
// error; the caller decides the fallback.
func (c *HTTPClient) Reply(ctx context.Context, userID, message string) (string, error) {
	payload, err := json.Marshal(request{UserID: userID, Message: message})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call chat api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat api status %d: %s", resp.StatusCode, body)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}

	return out.Reply, nil
}
