// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

func testConfig() *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{
			BroadbandCategoryID: 10,
			TVCategoryID:        11,
			TelephonyCategoryID: 12,
			RouterProductIDs:    []int{100},
			TVServiceIDs:        []int{200},
			TelephonyServiceIDs: []int{300},
			PromoCampaigns: map[int]config.PromoCampaign{
				55: {Price: 199, Months: 3},
			},
		},
		Pricing: config.PricingConfig{
			TaxRate:        1.25,
			CompanyTaxRate: 1.0,
		},
	}
}

func testService() *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewService(NewMemoryRepository(), testConfig(), logger)
}

func broadbandRequest(accessID, cityNet string) *AddToCartRequest {
	return &AddToCartRequest{
		Product: catalog.Product{ID: 1, CategoryID: 10, Name: "Fiber 100", MonthlyPrice: 399},
		Config: catalog.ItemConfig{
			catalog.ConfigServiceID: "fiber-100",
			catalog.ConfigAccessID:  accessID,
			catalog.ConfigCityNet:   cityNet,
		},
	}
}

func TestAddToCartRejectsIncompleteBroadband(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	req := broadbandRequest("", "stadsnat-1")
	_, err := svc.AddToCart(ctx, "s1", req)

	var validationErr *catalog.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, catalog.ConfigAccessID, validationErr.Field)

	// Nothing was persisted
	current, err := svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, current.Items)
}

func TestAddToCartReplacesBroadbandAtSameAddress(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", broadbandRequest("A-1", "stadsnat-1"))
	require.NoError(t, err)

	// Same address, different product: replaces
	second := broadbandRequest("A-1", "stadsnat-1")
	second.Product.ID = 2
	second.Product.Name = "Fiber 250"
	current, err := svc.AddToCart(ctx, "s1", second)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, 2, current.Items[0].ID)

	// Different address: coexists
	third := broadbandRequest("A-2", "stadsnat-1")
	third.Product.ID = 3
	current, err = svc.AddToCart(ctx, "s1", third)
	require.NoError(t, err)
	assert.Len(t, current.Items, 2)
}

func TestAddToCartTelephonyIsExclusivePerCategory(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	first := &AddToCartRequest{
		Product: catalog.Product{ID: 300, CategoryID: 12, Name: "Telefoni Bas"},
		Config:  catalog.ItemConfig{catalog.ConfigAreaCode: "08"},
	}
	_, err := svc.AddToCart(ctx, "s1", first)
	require.NoError(t, err)

	second := &AddToCartRequest{
		Product: catalog.Product{ID: 300, CategoryID: 12, Name: "Telefoni Plus"},
		Config: catalog.ItemConfig{
			catalog.ConfigPhoneNumber:  "0812345678",
			catalog.ConfigPortingOrgNr: "191212121212",
		},
	}
	current, err := svc.AddToCart(ctx, "s1", second)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, "0812345678", current.Items[0].Config[catalog.ConfigPhoneNumber])
}

func TestAddToCartRouterIsExemptFromBroadbandRules(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	// Router in the broadband category, no address config at all
	router := &AddToCartRequest{
		Product:  catalog.Product{ID: 100, CategoryID: 10, Name: "Router X", PayType: catalog.PayTypeOnce, Price: 499},
		Quantity: 2,
	}
	current, err := svc.AddToCart(ctx, "s1", router)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, catalog.CategoryRouter, current.Items[0].CategoryType)
	assert.Equal(t, 2, current.Items[0].Quantity)

	// Adding again stacks quantity instead of duplicating the row
	current, err = svc.AddToCart(ctx, "s1", router)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, 4, current.Items[0].Quantity)
}

func TestAddToCartUniqueKeyReplacesTwin(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	first := &AddToCartRequest{
		Product: catalog.Product{ID: 500, Name: "Tillval"},
		Unique:  "slot-1",
	}
	_, err := svc.AddToCart(ctx, "s1", first)
	require.NoError(t, err)

	second := &AddToCartRequest{
		Product: catalog.Product{ID: 501, Name: "Tillval 2"},
		Unique:  "slot-1",
	}
	current, err := svc.AddToCart(ctx, "s1", second)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)
	assert.Equal(t, 501, current.Items[0].ID)
}

func TestAddToCartAppliesPromoOverride(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	// Product 55 has a configured promo that replaces the provider campaign
	req := &AddToCartRequest{
		Product: catalog.Product{
			ID:             55,
			Name:           "Kampanjprodukt",
			MonthlyPrice:   399,
			CampaignPrice:  299,
			CampaignLength: 6,
		},
	}
	current, err := svc.AddToCart(ctx, "s1", req)
	require.NoError(t, err)
	require.Len(t, current.Items, 1)

	campaign := current.Items[0].Campaign
	require.NotNil(t, campaign)
	assert.Equal(t, int64(199), campaign.Price.IntPart())
	assert.Equal(t, 3, campaign.Months)
}

func TestUpdateQuantityZeroRemovesItem(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	req := &AddToCartRequest{
		Product:  catalog.Product{ID: 500, Name: "Tillval"},
		Quantity: 3,
	}
	_, err := svc.AddToCart(ctx, "s1", req)
	require.NoError(t, err)

	current, err := svc.UpdateQuantity(ctx, "s1", 500, 0)
	require.NoError(t, err)
	assert.Empty(t, current.Items)

	// Equivalent to RemoveFromCart: removing again is a no-op, not an error
	current, err = svc.RemoveFromCart(ctx, "s1", 500)
	require.NoError(t, err)
	assert.Empty(t, current.Items)
}

func TestUpdateQuantityRejectedForFixedQuantityCategory(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", broadbandRequest("A-1", "stadsnat-1"))
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, "s1", 1, 2)
	var validationErr *catalog.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, catalog.CategoryBroadband, validationErr.Category)
}

func TestUpdateItemConfigMergesFields(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", broadbandRequest("A-1", "stadsnat-1"))
	require.NoError(t, err)

	current, err := svc.UpdateItemConfig(ctx, "s1", 1, catalog.ItemConfig{
		"apartment": "1203",
	})
	require.NoError(t, err)

	cfg := current.Items[0].Config
	assert.Equal(t, "1203", cfg["apartment"])
	assert.Equal(t, "A-1", cfg[catalog.ConfigAccessID], "existing fields survive the merge")
}

func TestClearCart(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "s1", broadbandRequest("A-1", "stadsnat-1"))
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, "s1"))

	current, err := svc.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, current.Items)
}
