// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
)

// Service handles cart business logic
type Service struct {
	repo       Repository
	classifier *catalog.Classifier
	catalog    config.CatalogConfig
	pricing    config.PricingConfig
	logger     *logrus.Logger
}

// NewService creates a new cart service
func NewService(repo Repository, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		classifier: catalog.NewClassifier(cfg.Catalog),
		catalog:    cfg.Catalog,
		pricing:    cfg.Pricing,
		logger:     logger,
	}
}

// AddToCartRequest carries a provider product into the cart together with
// its per-category configuration.
type AddToCartRequest struct {
	Product  catalog.Product    `json:"product" binding:"required"`
	Quantity int                `json:"quantity"`
	Config   catalog.ItemConfig `json:"config"`
	Unique   string             `json:"unique"`
	Addons   []Addon            `json:"addons"`
}

// GetCart returns the cart for a session, or an empty cart if none exists
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	stored, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return s.emptyCart(sessionID), nil
	}
	return stored, nil
}

// AddToCart classifies and validates the product, applies any configured
// promotional campaign, and inserts it honoring the category's exclusivity
// rule. The whole operation is atomic: a validation failure leaves the
// stored cart untouched, and the mutated snapshot is only persisted once.
func (s *Service) AddToCart(ctx context.Context, sessionID string, req *AddToCartRequest) (*Cart, error) {
	categoryType := s.classifier.Classify(&req.Product)

	if err := catalog.Validate(req.Config, categoryType); err != nil {
		return nil, err
	}

	current, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	item := s.buildLineItem(&req.Product, categoryType, req)
	current.Items = s.insert(current.Items, item)
	current.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":    sessionID,
		"product_id":    item.ID,
		"category_type": item.CategoryType,
	}).Debug("Item added to cart")

	return current, nil
}

// RemoveFromCart removes all rows with the given product id
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID int) (*Cart, error) {
	current, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := current.Items[:0]
	for _, item := range current.Items {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	current.Items = kept
	current.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}
	return current, nil
}

// UpdateQuantity sets the quantity of a line item. A quantity of zero or
// less removes the item, making UpdateQuantity(id, 0) equivalent to
// RemoveFromCart(id).
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, sessionID, productID)
	}

	current, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range current.Items {
		if current.Items[i].ID != productID {
			continue
		}
		if quantity > 1 && catalog.RuleFor(current.Items[i].CategoryType).FixedQuantity {
			return nil, &catalog.ValidationError{
				Category: current.Items[i].CategoryType,
				Message:  "quantity is fixed at 1 for this category",
			}
		}
		current.Items[i].Quantity = quantity
		found = true
	}

	if !found {
		return nil, fmt.Errorf("item %d not found in cart", productID)
	}

	current.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}
	return current, nil
}

// UpdateItemConfig shallow-merges the given fields into the item's config
func (s *Service) UpdateItemConfig(ctx context.Context, sessionID string, productID int, partial catalog.ItemConfig) (*Cart, error) {
	current, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range current.Items {
		if current.Items[i].ID != productID {
			continue
		}
		if current.Items[i].Config == nil {
			current.Items[i].Config = catalog.ItemConfig{}
		}
		for key, value := range partial {
			current.Items[i].Config[key] = value
		}
		found = true
	}

	if !found {
		return nil, fmt.Errorf("item %d not found in cart", productID)
	}

	current.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}
	return current, nil
}

// ClearCart empties the cart and its persistence in one step
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	return s.repo.Clear(ctx, sessionID)
}

// Private helper methods

func (s *Service) emptyCart(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		Items:     []LineItem{},
		TaxRate:   s.pricing.TaxRate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Service) buildLineItem(p *catalog.Product, categoryType catalog.CategoryType, req *AddToCartRequest) LineItem {
	pricing := p.Normalize()

	// A locally configured promotional campaign replaces any provider-side
	// campaign window for the same product id.
	if promo, ok := s.catalog.PromoCampaigns[p.ID]; ok {
		pricing.Campaign = &catalog.CampaignWindow{
			Price:  decimal.NewFromInt(promo.Price),
			Months: promo.Months,
		}
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	if catalog.RuleFor(categoryType).FixedQuantity {
		quantity = 1
	}

	return LineItem{
		ID:           p.ID,
		CategoryID:   p.CategoryID,
		CategoryType: categoryType,
		Name:         p.Name,
		Quantity:     quantity,
		PayType:      p.PayType,
		MonthlyPrice: pricing.Monthly,
		SetupPrice:   pricing.Setup,
		OncePrice:    pricing.Once,
		Campaign:     pricing.Campaign,
		Config:       req.Config,
		Unique:       req.Unique,
		Addons:       req.Addons,
		AddedAt:      time.Now().UTC(),
	}
}

// insert applies the insertion policy: per-address exclusive categories
// replace an existing item sharing category type and address key,
// per-category exclusive categories replace any item of the category, an
// explicit unique key replaces its twin, and a plain duplicate id without a
// unique key stacks by quantity.
func (s *Service) insert(items []LineItem, item LineItem) []LineItem {
	rule := catalog.RuleFor(item.CategoryType)

	switch rule.Exclusivity {
	case catalog.ExclusivityPerAddress:
		items = removeMatching(items, func(existing *LineItem) bool {
			return existing.CategoryType == item.CategoryType && existing.AddressKey() == item.AddressKey()
		})
	case catalog.ExclusivityPerCategory:
		items = removeMatching(items, func(existing *LineItem) bool {
			return existing.CategoryType == item.CategoryType
		})
	}

	if item.Unique != "" {
		items = removeMatching(items, func(existing *LineItem) bool {
			return existing.Unique == item.Unique
		})
		return append(items, item)
	}

	// Fixed-quantity categories never stack; each add inserts its own row
	// so the address-level replacement above stays observable per line.
	if !rule.FixedQuantity {
		for i := range items {
			if items[i].ID == item.ID && items[i].CategoryID == item.CategoryID && items[i].Unique == "" {
				items[i].Quantity += item.Quantity
				return items
			}
		}
	}

	return append(items, item)
}

func removeMatching(items []LineItem, match func(*LineItem) bool) []LineItem {
	kept := items[:0]
	for i := range items {
		if !match(&items[i]) {
			kept = append(kept, items[i])
		}
	}
	return kept
}
