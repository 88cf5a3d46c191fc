// internal/domain/pricing/engine.go
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// CustomerType selects the applicable tax rate
type CustomerType string

const (
	CustomerPrivate CustomerType = "Private"
	CustomerCompany CustomerType = "Company"
)

// Period labels shown in the campaign breakdown
const (
	labelPerMonth   = "Per månad"
	labelThereafter = "Därefter"
)

// PeriodBucket is one row of the campaign period breakdown
type PeriodBucket struct {
	PeriodLabel string `json:"period_label"`
	MonthlyCost int64  `json:"monthly_cost"`
	IsCampaign  bool   `json:"is_campaign"`
}

// Totals is the aggregate view handed to the checkout UI
type Totals struct {
	Monthly   int64          `json:"monthly"`
	Setup     int64          `json:"setup"`
	Breakdown []PeriodBucket `json:"breakdown"`
}

// Engine computes tax-inclusive cart totals. Every line item's contribution
// is rounded to the nearest whole currency unit before summation, so the
// displayed line totals always add up to the aggregate. Rounding is half
// away from zero, which decimal.Round implements.
type Engine struct {
	pricing config.PricingConfig
}

// NewEngine creates a pricing engine from pricing configuration
func NewEngine(pricing config.PricingConfig) *Engine {
	return &Engine{
		pricing: pricing,
	}
}

// Totals computes the full pricing view for a cart
func (e *Engine) Totals(c *cart.Cart, customerType CustomerType) Totals {
	return Totals{
		Monthly:   e.MonthlyTotal(c, customerType),
		Setup:     e.SetupTotal(c, customerType),
		Breakdown: e.PeriodBreakdown(c, customerType),
	}
}

// MonthlyTotal sums the recurring cost of all non-one-time items at the
// price that applies from month one, campaign windows included.
func (e *Engine) MonthlyTotal(c *cart.Cart, customerType CustomerType) int64 {
	return e.monthlyTotal(c, customerType, true)
}

// SetupTotal sums the one-time cost of the cart: the resolved one-time
// price for "Once" items, and setup fees plus category surcharges for
// recurring items.
func (e *Engine) SetupTotal(c *cart.Cart, customerType CustomerType) int64 {
	tax := e.taxRate(customerType)

	total := decimal.Zero
	for i := range c.Items {
		item := &c.Items[i]
		line := e.setupLine(item)
		total = total.Add(line.Mul(tax).Round(0))
	}

	return total.IntPart()
}

// PeriodBreakdown produces the ordered campaign period buckets: one entry
// for the campaign window, followed by the regular rate thereafter. When no
// campaign is active, or the rates end up equal, it collapses to a single
// per-month entry.
func (e *Engine) PeriodBreakdown(c *cart.Cart, customerType CustomerType) []PeriodBucket {
	campaignMonths := 0
	for i := range c.Items {
		if c.Items[i].Campaign != nil && c.Items[i].Campaign.Months > campaignMonths {
			campaignMonths = c.Items[i].Campaign.Months
		}
	}

	regular := e.monthlyTotal(c, customerType, false)
	if campaignMonths == 0 {
		return []PeriodBucket{{PeriodLabel: labelPerMonth, MonthlyCost: regular}}
	}

	campaign := e.monthlyTotal(c, customerType, true)
	if campaign == regular {
		return []PeriodBucket{{PeriodLabel: labelPerMonth, MonthlyCost: regular}}
	}

	return []PeriodBucket{
		{
			PeriodLabel: fmt.Sprintf("Mån 1 - %d", campaignMonths),
			MonthlyCost: campaign,
			IsCampaign:  true,
		},
		{
			PeriodLabel: labelThereafter,
			MonthlyCost: regular,
		},
	}
}

// Private helper methods

func (e *Engine) monthlyTotal(c *cart.Cart, customerType CustomerType, withCampaigns bool) int64 {
	tax := e.taxRate(customerType)

	total := decimal.Zero
	for i := range c.Items {
		item := &c.Items[i]
		if item.IsOneTime() {
			continue
		}

		unit := item.MonthlyPrice
		if withCampaigns && item.Campaign != nil {
			unit = item.Campaign.Price
		}

		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		for _, addon := range item.Addons {
			line = line.Add(addon.MonthlyPrice.Mul(decimal.NewFromInt(int64(addon.Quantity))))
		}

		total = total.Add(line.Mul(tax).Round(0))
	}

	return total.IntPart()
}

// setupLine computes the untaxed one-time cost of one line item
func (e *Engine) setupLine(item *cart.LineItem) decimal.Decimal {
	quantity := decimal.NewFromInt(int64(item.Quantity))

	if item.IsOneTime() {
		return item.OncePrice.Mul(quantity)
	}

	line := item.SetupPrice.Mul(quantity)

	for _, addon := range item.Addons {
		line = line.Add(addon.SetupPrice.Mul(decimal.NewFromInt(int64(addon.Quantity))))
	}

	if item.CategoryType == catalog.CategoryTelephony {
		if item.Config[catalog.ConfigPhoneNumber] != "" {
			line = line.Add(decimal.NewFromInt(e.pricing.PortingFee))
		} else if item.Config[catalog.ConfigAreaCode] != "" {
			line = line.Add(decimal.NewFromInt(e.pricing.NewNumberFee))
		}
	}

	if hardwareType := item.Config[catalog.ConfigHardwareType]; hardwareType != "" {
		fee, ok := e.pricing.HardwareFees[hardwareType]
		if !ok {
			fee = e.pricing.DefaultHardware
		}
		line = line.Add(decimal.NewFromInt(fee))
	}

	return line
}

func (e *Engine) taxRate(customerType CustomerType) decimal.Decimal {
	if customerType == CustomerCompany {
		return decimal.NewFromFloat(e.pricing.CompanyTaxRate)
	}
	return decimal.NewFromFloat(e.pricing.TaxRate)
}
