// internal/domain/catalog/entity.go
package catalog

import (
	"github.com/shopspring/decimal"
)

// CategoryType is the closed set of product categories the storefront knows
// how to sell. It is derived once when a product enters the cart and carried
// on the line item from then on.
type CategoryType string

const (
	CategoryBroadband                     CategoryType = "broadband"
	CategoryTV                            CategoryType = "tv"
	CategoryTVHardware                    CategoryType = "tv_hardware"
	CategoryTelephony                     CategoryType = "telephony"
	CategoryTelephonyHardware             CategoryType = "telephony_hardware"
	CategoryTelephonyHardwareMonthlyBound CategoryType = "telephony_hardware_monthly_bound"
	CategoryRouter                        CategoryType = "router"
	CategoryStandard                      CategoryType = "standard"
)

// PayType values used by the billing system
const (
	PayTypeRegular = "Regular"
	PayTypeOnce    = "Once"
	PayTypeFree    = "Free"
)

// Product represents a provider product record as it arrives from the
// billing system. Price fields overlap: one-time products may carry their
// price in any of Price, SetupPrice or MonthlyPrice depending on how the
// product was configured upstream.
type Product struct {
	ID           int     `json:"id"`
	CategoryID   int     `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Name         string  `json:"name"`
	PayType      string  `json:"paytype"`
	MonthlyPrice float64 `json:"m_price"`
	SetupPrice   float64 `json:"s_price"`
	Price        float64 `json:"price"`

	// Provider-side campaign window
	CampaignPrice  float64 `json:"m_campaign_price"`
	CampaignLength int     `json:"m_campaign_length"`
}

// Pricing is the canonical, alias-resolved price set for a product. All
// pricing and validation logic downstream works on this, never on the raw
// provider fields.
type Pricing struct {
	Monthly  decimal.Decimal
	Setup    decimal.Decimal
	Once     decimal.Decimal
	Campaign *CampaignWindow
}

// CampaignWindow is a time-limited monthly price valid for the first
// Months months of the subscription.
type CampaignWindow struct {
	Price  decimal.Decimal
	Months int
}

// Normalize resolves the overlapping provider price fields into one
// canonical Pricing. For one-time products the first non-zero of
// Price, SetupPrice and MonthlyPrice wins.
func (p *Product) Normalize() Pricing {
	pricing := Pricing{
		Monthly: decimal.NewFromFloat(p.MonthlyPrice),
		Setup:   decimal.NewFromFloat(p.SetupPrice),
	}

	pricing.Once = firstNonZero(p.Price, p.SetupPrice, p.MonthlyPrice)

	if p.CampaignPrice > 0 && p.CampaignLength > 0 {
		pricing.Campaign = &CampaignWindow{
			Price:  decimal.NewFromFloat(p.CampaignPrice),
			Months: p.CampaignLength,
		}
	}

	return pricing
}

// IsOneTime reports whether the product is a one-time purchase rather than
// a recurring subscription.
func (p *Product) IsOneTime() bool {
	return p.PayType == PayTypeOnce
}

func firstNonZero(values ...float64) decimal.Decimal {
	for _, v := range values {
		if v != 0 {
			return decimal.NewFromFloat(v)
		}
	}
	return decimal.Zero
}
