// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePromoCampaigns(t *testing.T) {
	campaigns := parsePromoCampaigns("55:199:3, 72:249:6")

	assert.Len(t, campaigns, 2)
	assert.Equal(t, PromoCampaign{Price: 199, Months: 3}, campaigns[55])
	assert.Equal(t, PromoCampaign{Price: 249, Months: 6}, campaigns[72])
}

func TestParsePromoCampaignsSkipsMalformedEntries(t *testing.T) {
	campaigns := parsePromoCampaigns("55:199:3,not-a-campaign,60:abc:2,61:100")

	assert.Len(t, campaigns, 1)
	assert.Equal(t, PromoCampaign{Price: 199, Months: 3}, campaigns[55])
}

func TestParsePromoCampaignsEmpty(t *testing.T) {
	assert.Empty(t, parsePromoCampaigns(""))
}

func TestParseFeeTable(t *testing.T) {
	fees := parseFeeTable("dect:495, desk:295")

	assert.Len(t, fees, 2)
	assert.Equal(t, int64(495), fees["dect"])
	assert.Equal(t, int64(295), fees["desk"])
}

func TestParseFeeTableSkipsMalformedEntries(t *testing.T) {
	fees := parseFeeTable("dect:495,broken,desk:notanumber")

	assert.Len(t, fees, 1)
	assert.Equal(t, int64(495), fees["dect"])
}

func TestValidateRejectsShortSessionSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.Session.Secret = "short"

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveTaxRate(t *testing.T) {
	cfg := validTestConfig()
	cfg.Pricing.TaxRate = 0

	assert.Error(t, cfg.Validate())
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	assert.NoError(t, validTestConfig().Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validTestConfig()
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5433"

	dsn := cfg.GetDatabaseDSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "sslmode=disable")
}

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			Name:    "storefront_db",
			User:    "storefront_user",
			SSLMode: "disable",
		},
		Redis: RedisConfig{Host: "localhost"},
		Session: SessionConfig{
			Secret: "a-sufficiently-long-session-secret-value",
		},
		HostBill: HostBillConfig{BaseURL: "https://billing.example.se/api"},
		Pricing:  PricingConfig{TaxRate: 1.25},
	}
}
