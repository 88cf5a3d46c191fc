// internal/pkg/bankid/client.go
package bankid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/your-org/storefront-backend/internal/config"
)

// Collect statuses returned by the signing gateway
const (
	StatusComplete = "complete"
	StatusFailed   = "failed"
	StatusPending  = "pending"
)

// ErrSessionExpired is returned when the gateway answers 401: the remote
// signing session is gone and must be re-initiated.
var ErrSessionExpired = errors.New("bankid: session expired")

// ConflictError indicates another signing session is already active for the
// same identity. It carries the gateway's suggested retry delay in seconds.
type ConflictError struct {
	RetryAfter int
	Message    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("bankid: session conflict: %s (retry after %ds)", e.Message, e.RetryAfter)
}

// InitiateResult is the response to a successful session initiation
type InitiateResult struct {
	OrderRef       string `json:"orderRef"`
	AutoStartToken string `json:"autoStartToken"`
	QRImageURL     string `json:"qrImageUrl"`
	Resumed        bool   `json:"resumed"`
}

// CollectResult is one poll of the signing session
type CollectResult struct {
	Status   string `json:"status"`
	HintCode string `json:"hintCode"`
}

// Client talks to the BankID signing gateway
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new signing gateway client
func NewClient(cfg config.BankIDConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Initiate starts a remote signing session for a personal number. A
// session conflict comes back as *ConflictError so the caller can route it
// to the wait-and-retry path instead of the generic failure path.
func (c *Client) Initiate(ctx context.Context, personalNumber string, payload interface{}) (*InitiateResult, error) {
	body, err := c.call(ctx, http.MethodPost, "/sign", map[string]interface{}{
		"personalNumber": personalNumber,
		"payload":        payload,
	})
	if err != nil {
		return nil, err
	}

	var result InitiateResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse initiate response: %w", err)
	}
	return &result, nil
}

// Collect polls the status of a signing session
func (c *Client) Collect(ctx context.Context, orderRef string) (*CollectResult, error) {
	body, err := c.call(ctx, http.MethodPost, "/collect", map[string]string{
		"orderRef": orderRef,
	})
	if err != nil {
		return nil, err
	}

	var result CollectResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse collect response: %w", err)
	}
	return &result, nil
}

// Cancel releases a signing session. It is idempotent and safe to call
// speculatively; callers on cleanup paths ignore its error.
func (c *Client) Cancel(ctx context.Context, orderRef string) error {
	_, err := c.call(ctx, http.MethodPost, "/cancel", map[string]string{
		"orderRef": orderRef,
	})
	return err
}

// call makes an HTTP request to the signing gateway
func (c *Client) call(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	reqBody, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrSessionExpired
	}

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// decodeError classifies gateway errors. Conflicts are flagged either by an
// explicit error type or by message content, depending on the gateway
// version.
func decodeError(status int, body []byte) error {
	var envelope struct {
		ErrorType  string `json:"errorType"`
		Message    string `json:"message"`
		RetryAfter int    `json:"retryAfter"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("signing gateway error (status %d): %s", status, string(body))
	}

	if envelope.ErrorType == "session_conflict" || strings.Contains(strings.ToLower(envelope.Message), "already in progress") {
		retryAfter := envelope.RetryAfter
		if retryAfter <= 0 {
			retryAfter = 30
		}
		return &ConflictError{RetryAfter: retryAfter, Message: envelope.Message}
	}

	return fmt.Errorf("signing gateway error (status %d): %s", status, envelope.Message)
}
