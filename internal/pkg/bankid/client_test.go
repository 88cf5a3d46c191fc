// internal/pkg/bankid/client_test.go
package bankid

import (
	"context"
	"encoding/json"
	"errors"
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

	return NewClient(config.BankIDConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
	})
}

func TestInitiateDecodesResult(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sign", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "198001011234", req["personalNumber"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"orderRef":       "ref-42",
			"autoStartToken": "ast-42",
			"qrImageUrl":     "https://signing.example.se/qr/ref-42",
		})
	})

	result, err := client.Initiate(context.Background(), "198001011234", map[string]string{"order": "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, "ref-42", result.OrderRef)
	assert.Equal(t, "ast-42", result.AutoStartToken)
	assert.Equal(t, "https://signing.example.se/qr/ref-42", result.QRImageURL)
}

func TestInitiateConflictByErrorType(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errorType":  "session_conflict",
			"message":    "signing session already active",
			"retryAfter": 60,
		})
	})

	_, err := client.Initiate(context.Background(), "198001011234", nil)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 60, conflict.RetryAfter)
}

func TestInitiateConflictByMessageDefaultsRetryAfter(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "A signing is already in progress for this user",
		})
	})

	_, err := client.Initiate(context.Background(), "198001011234", nil)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 30, conflict.RetryAfter)
}

func TestCollectExpiredSession(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Collect(context.Background(), "ref-42")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestCollectDecodesStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collect", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"status":   StatusPending,
			"hintCode": "userSign",
		})
	})

	result, err := client.Collect(context.Background(), "ref-42")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Status)
	assert.Equal(t, "userSign", result.HintCode)
}

func TestCancelPropagatesGenericError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "internal error"})
	})

	err := client.Cancel(context.Background(), "ref-42")
	require.Error(t, err)

	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))
}
