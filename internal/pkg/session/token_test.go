// internal/pkg/session/token_test.go
package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
)

func testTokenManager(secret string) *TokenManager {
	return NewTokenManager(&config.Config{
		App: config.AppConfig{Name: "storefront"},
		Session: config.SessionConfig{
			Secret: secret,
			Expiry: time.Hour,
		},
	})
}

func TestIssueAndValidate(t *testing.T) {
	manager := testTokenManager("test-secret")

	token, sessionID, err := manager.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, sessionID)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, "storefront", claims.Issuer)
	assert.Equal(t, "session:"+sessionID, claims.Subject)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, _, err := testTokenManager("secret-a").Issue()
	require.NoError(t, err)

	_, err = testTokenManager("secret-b").Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager := NewTokenManager(&config.Config{
		App: config.AppConfig{Name: "storefront"},
		Session: config.SessionConfig{
			Secret: "test-secret",
			Expiry: -time.Minute,
		},
	})

	token, _, err := manager.Issue()
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := testTokenManager("test-secret").Validate("not-a-token")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc123", ExtractTokenFromHeader("Bearer abc123"))
	assert.Equal(t, "abc123", ExtractTokenFromHeader("abc123"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
}
