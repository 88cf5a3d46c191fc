// internal/domain/signing/entity_test.go
package signing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreKeepsGatewayFieldsAcrossSaveGet(t *testing.T) {
	store := NewMemoryStore()

	session := &Session{
		ID:             "sess-1",
		PersonalNumber: "198001011234",
		OrderNumber:    "ORD-1001",
		OrderRef:       "ref-1",
		Status:         StatusActive,
		AutoStartToken: "ast-1",
		TimeLeft:       180,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, store.Save(context.Background(), session))

	loaded, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// The poll loop collects on the order ref and the guard matches on the
	// personal number; both must survive persistence
	assert.Equal(t, "ref-1", loaded.OrderRef)
	assert.Equal(t, "198001011234", loaded.PersonalNumber)
	assert.Equal(t, StatusActive, loaded.Status)
	assert.Equal(t, "ORD-1001", loaded.OrderNumber)
}

func TestStoreMutationIsolation(t *testing.T) {
	store := NewMemoryStore()

	session := &Session{ID: "sess-1", OrderRef: "ref-1", Status: StatusActive}
	require.NoError(t, store.Save(context.Background(), session))

	loaded, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	loaded.Status = StatusError

	again, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, again.Status)
}

func TestSessionResponseHidesGatewayFields(t *testing.T) {
	session := &Session{
		ID:             "sess-1",
		PersonalNumber: "198001011234",
		OrderRef:       "ref-1",
		Status:         StatusActive,
	}

	data, err := json.Marshal(session)
	require.NoError(t, err)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &response))

	assert.NotContains(t, string(data), "198001011234")
	assert.NotContains(t, string(data), "ref-1")
	assert.Equal(t, "sess-1", response["id"])
	assert.Equal(t, string(StatusActive), response["status"])
}
