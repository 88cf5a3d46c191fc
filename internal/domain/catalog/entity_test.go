// internal/domain/catalog/entity_test.go
package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResolvesOneTimePriceAliases(t *testing.T) {
	// One-time products carry their price in any of the three fields
	// depending on how the provider record was configured
	cases := []struct {
		name    string
		product Product
		want    int64
	}{
		{"price field", Product{PayType: PayTypeOnce, Price: 499}, 499},
		{"setup field", Product{PayType: PayTypeOnce, SetupPrice: 399}, 399},
		{"monthly field", Product{PayType: PayTypeOnce, MonthlyPrice: 299}, 299},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pricing := tc.product.Normalize()
			assert.True(t, pricing.Once.Equal(decimal.NewFromInt(tc.want)),
				"expected once price %d, got %s", tc.want, pricing.Once)
		})
	}
}

func TestNormalizeCampaignWindow(t *testing.T) {
	p := Product{
		MonthlyPrice:   399,
		CampaignPrice:  199,
		CampaignLength: 3,
	}

	pricing := p.Normalize()
	require.NotNil(t, pricing.Campaign)
	assert.True(t, pricing.Campaign.Price.Equal(decimal.NewFromInt(199)))
	assert.Equal(t, 3, pricing.Campaign.Months)

	// Zero-length or zero-price campaigns are ignored
	noCampaign := Product{MonthlyPrice: 399, CampaignPrice: 199}
	assert.Nil(t, noCampaign.Normalize().Campaign)
}

func TestIsOneTime(t *testing.T) {
	assert.True(t, (&Product{PayType: PayTypeOnce}).IsOneTime())
	assert.False(t, (&Product{PayType: PayTypeRegular}).IsOneTime())
	assert.False(t, (&Product{PayType: PayTypeFree}).IsOneTime())
}
