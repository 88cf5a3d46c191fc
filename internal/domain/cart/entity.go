// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// LineItem represents one row in the cart. The category type is computed
// once when the item is added and persisted with it, so a later provider-side
// reconfiguration of id sets cannot reclassify items already in the cart.
type LineItem struct {
	ID           int                  `json:"id"`
	CategoryID   int                  `json:"category_id"`
	CategoryType catalog.CategoryType `json:"category_type"`
	Name         string               `json:"name"`
	Quantity     int                  `json:"quantity"`
	PayType      string               `json:"paytype"`

	// Canonical prices, alias-resolved at add time
	MonthlyPrice decimal.Decimal         `json:"monthly_price"`
	SetupPrice   decimal.Decimal         `json:"setup_price"`
	OncePrice    decimal.Decimal         `json:"once_price"`
	Campaign     *catalog.CampaignWindow `json:"campaign,omitempty"`

	Config catalog.ItemConfig `json:"config,omitempty"`
	Unique string             `json:"unique,omitempty"`
	Addons []Addon            `json:"addons,omitempty"`

	AddedAt time.Time `json:"added_at"`
}

// Addon is an attached service on a line item, with its prices captured at
// the time of adding.
type Addon struct {
	ID           int             `json:"id"`
	Name         string          `json:"name,omitempty"`
	Quantity     int             `json:"qty"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	SetupPrice   decimal.Decimal `json:"setup_price"`
}

// Cart is the full persisted cart state for one storefront session
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	TaxRate   float64    `json:"tax_rate"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AddressKey is the deduplication key for per-address exclusive categories.
// An explicit unique override wins; otherwise the key is the city network
// plus the physical access id.
func (li *LineItem) AddressKey() string {
	if li.Unique != "" {
		return li.Unique
	}
	return li.Config[catalog.ConfigCityNet] + "/" + li.Config[catalog.ConfigAccessID]
}

// IsOneTime reports whether the line is a one-time purchase
func (li *LineItem) IsOneTime() bool {
	return li.PayType == catalog.PayTypeOnce
}
