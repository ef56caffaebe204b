package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/warelabs/warelay/internal/models"
)

// defaultBaseURL is Twilio's REST API root.
const defaultBaseURL = "https://api.twilio.com"

// Sender delivers an outbound message through the provider.
type Sender interface {
	Send(ctx context.Context, msg models.OutboundMessage) (string, error)
}

// APIError is a non-2xx answer from the Twilio REST API.
type APIError struct {
	Status  int    `json:"-"`       // HTTP status
	Code    int    `json:"code"`    // Twilio error code
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio: status %d (code %d): %s", e.Status, e.Code, e.Message)
}

// Client sends messages through the Twilio Messages API.
type Client struct {
	accountSID string
	authToken  string

	// BaseURL is Twilio's API root, overridable in tests.
	BaseURL string

	httpc *http.Client
}

// NewClient creates a Messages API client authenticated with the account
// SID and auth token.
func NewClient(accountSID, authToken string, timeout time.Duration) *Client {
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		BaseURL:    defaultBaseURL,
		httpc:      &http.Client{Timeout: timeout},
	}
}

// messageResponse is the subset of Twilio's create-message answer we read.
type messageResponse struct {
	SID string `json:"sid"`
}

// Send posts one message to the Messages API and returns the message SID.
func (c *Client) Send(ctx context.Context, msg models.OutboundMessage) (string, error) {
	form := url.Values{}
	form.Set("From", msg.From)
	form.Set("To", msg.To)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.BaseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call twilio: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("read twilio response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		apiErr.Status = resp.StatusCode
		return "", apiErr
	}

	// The SID is informational; a 2xx means the message was accepted.
	var out messageResponse
	_ = json.Unmarshal(body, &out)

	return out.SID, nil
}
