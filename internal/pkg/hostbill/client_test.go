// internal/pkg/hostbill/client_test.go
package hostbill

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.HostBillConfig{
		BaseURL:    server.URL,
		APIKey:     "key",
		APISecret:  "secret",
		CSRFHeader: "X-CSRF-Token",
		Timeout:    2 * time.Second,
	})
}

func TestCreateOrderSendsAuthAndCSRF(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "token-1", r.Header.Get("X-CSRF-Token"))

		json.NewEncoder(w).Encode(map[string]string{
			"order_id":   "ORD-1001",
			"invoice_id": "INV-2002",
		})
	})

	result, err := client.CreateOrder(context.Background(), map[string]string{"customer": "x"}, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", result.OrderID)
	assert.Equal(t, "INV-2002", result.Invoice)
}

func TestCreateOrderFlattensNestedFieldErrors(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "validation failed",
			"errors": map[string]interface{}{
				"customer": map[string]interface{}{
					"email": "invalid email address",
				},
				"product_list": []interface{}{"at most one broadband line is allowed"},
			},
		})
	})

	_, err := client.CreateOrder(context.Background(), map[string]string{}, "token-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.Equal(t, "invalid email address", apiErr.FieldErrors["customer.email"])
	assert.Equal(t, "at most one broadband line is allowed", apiErr.FieldErrors["product_list"])
}

func TestCreateOrderNonJSONErrorBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})

	_, err := client.CreateOrder(context.Background(), map[string]string{}, "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestGetProductsHitsCategoryEndpoint(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/categories/10/products", r.URL.Path)
		assert.Empty(t, r.Header.Get("X-CSRF-Token"))

		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"id": 1, "name": "Fiber 100"},
			{"id": 2, "name": "Fiber 250"},
		})
	})

	products, err := client.GetProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Fiber 100", products[0].Name)
}

func TestGetProductNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "product not found"})
	})

	_, err := client.GetProduct(context.Background(), 999)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestGetCSRFToken(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/csrf-token", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"token": "fresh-token"})
	})

	token, err := client.GetCSRFToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}
