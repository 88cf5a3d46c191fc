// internal/pkg/hostbill/client.go
package hostbill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// Client talks to the HostBill billing system API
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	csrfHeader string
	httpClient *http.Client
}

// NewClient creates a new HostBill API client
func NewClient(cfg config.HostBillConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		csrfHeader: cfg.CSRFHeader,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// APIError is a non-2xx response from the billing system. FieldErrors is
// the flattened view of the API's nested error structure, keyed by payload
// field path.
type APIError struct {
	StatusCode  int
	Message     string
	FieldErrors map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hostbill API error (status %d): %s", e.StatusCode, e.Message)
}

// OrderResult is the billing system's response to a created order
type OrderResult struct {
	OrderID string `json:"order_id"`
	Invoice string `json:"invoice_id,omitempty"`
}

// CreateOrder submits an order payload to the order-creation endpoint. The
// payload is an already validated document; field-level rejections from the
// API side come back inside *APIError.
func (c *Client) CreateOrder(ctx context.Context, payload interface{}, csrfToken string) (*OrderResult, error) {
	body, err := c.call(ctx, http.MethodPost, "/orders", payload, csrfToken)
	if err != nil {
		return nil, err
	}

	var result OrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	return &result, nil
}

// GetProduct fetches a provider product record by id
func (c *Client) GetProduct(ctx context.Context, productID int) (*catalog.Product, error) {
	body, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, "")
	if err != nil {
		return nil, err
	}

	var product catalog.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}
	return &product, nil
}

// GetProducts fetches the provider product records of one category
func (c *Client) GetProducts(ctx context.Context, categoryID int) ([]catalog.Product, error) {
	body, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/categories/%d/products", categoryID), nil, "")
	if err != nil {
		return nil, err
	}

	var products []catalog.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("failed to parse product list response: %w", err)
	}
	return products, nil
}

// GetCSRFToken fetches a fresh CSRF token for state-mutating calls
func (c *Client) GetCSRFToken(ctx context.Context) (string, error) {
	body, err := c.call(ctx, http.MethodGet, "/csrf-token", nil, "")
	if err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse CSRF token response: %w", err)
	}
	return result.Token, nil
}

// call makes an HTTP request to the billing API
func (c *Client) call(ctx context.Context, method, endpoint string, data interface{}, csrfToken string) ([]byte, error) {
	var reqBody []byte
	var err error

	if data != nil {
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	if csrfToken != "" {
		req.Header.Set(c.csrfHeader, csrfToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// decodeAPIError flattens the API's nested error structure, which mirrors
// the payload shape, into path-keyed messages.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode:  status,
		Message:     http.StatusText(status),
		FieldErrors: map[string]string{},
	}

	var envelope struct {
		Message string                 `json:"message"`
		Errors  map[string]interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if len(body) > 0 {
			apiErr.Message = string(body)
		}
		return apiErr
	}

	if envelope.Message != "" {
		apiErr.Message = envelope.Message
	}
	flattenErrors("", envelope.Errors, apiErr.FieldErrors)
	return apiErr
}

func flattenErrors(prefix string, node map[string]interface{}, out map[string]string) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[path] = v
		case map[string]interface{}:
			flattenErrors(path, v, out)
		case []interface{}:
			for _, elem := range v {
				if msg, ok := elem.(string); ok {
					out[path] = msg
					break
				}
			}
		}
	}
}
