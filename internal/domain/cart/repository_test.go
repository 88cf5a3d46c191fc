// internal/domain/cart/repository_test.go
package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

func TestMemoryRepositoryLoadAbsentReturnsNil(t *testing.T) {
	repo := NewMemoryRepository()

	loaded, err := repo.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	stored := &Cart{
		SessionID: "s1",
		TaxRate:   1.25,
		Items: []LineItem{
			{
				ID:           1,
				CategoryType: catalog.CategoryBroadband,
				Name:         "Fiber 100",
				Quantity:     1,
				MonthlyPrice: decimal.NewFromInt(399),
				Config:       catalog.ItemConfig{catalog.ConfigAccessID: "A-1"},
			},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, stored))

	loaded, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Fiber 100", loaded.Items[0].Name)
	assert.True(t, loaded.Items[0].MonthlyPrice.Equal(decimal.NewFromInt(399)))

	// Mutating the loaded copy must not leak into the store
	loaded.Items[0].Quantity = 99
	reloaded, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Items[0].Quantity)
}

func TestMemoryRepositoryClear(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Cart{SessionID: "s1"}))
	require.NoError(t, repo.Clear(ctx, "s1"))

	loaded, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
