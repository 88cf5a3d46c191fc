// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/pkg/hostbill"
	"gorm.io/gorm"
)

// ErrSubmissionInFlight is returned when an order submission for the same
// session is already running. The guard prevents double-order creation when
// the user retries while a request is still in flight.
var ErrSubmissionInFlight = errors.New("order submission already in progress")

// ErrEmptyCart is returned when submitting with no items in the cart
var ErrEmptyCart = errors.New("cart is empty")

// BillingClient is the slice of the billing system API the order service
// depends on.
type BillingClient interface {
	CreateOrder(ctx context.Context, payload interface{}, csrfToken string) (*hostbill.OrderResult, error)
	GetCSRFToken(ctx context.Context) (string, error)
}

// Service handles order submission
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	billing     BillingClient
	cartService *cart.Service
	engine      *pricing.Engine
	builder     *Builder
	logger      *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, redisClient *redis.Client, billing BillingClient, cartService *cart.Service, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		billing:     billing,
		cartService: cartService,
		engine:      pricing.NewEngine(cfg.Pricing),
		builder:     NewBuilder(cfg.Catalog),
		logger:      logger,
	}
}

// SubmitRequest carries the checkout form into order submission
type SubmitRequest struct {
	Customer Customer `json:"customer" binding:"required"`
	Options  Options  `json:"options"`
}

const submitGuardTTL = 10 * time.Minute

// Submit builds the order payload from the session's cart, posts it to the
// billing system, archives the accepted order, and clears the cart. The
// duplicate-submission guard is acquired before any network call and only
// released on terminal failure, so a retry after success cannot create a
// second order.
func (s *Service) Submit(ctx context.Context, sessionID string, req *SubmitRequest) (*Record, error) {
	guardKey := fmt.Sprintf("order:submit:%s", sessionID)

	acquired, err := s.redisClient.SetNX(ctx, guardKey, "1", submitGuardTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire submission guard: %w", err)
	}
	if !acquired {
		return nil, ErrSubmissionInFlight
	}

	record, err := s.submit(ctx, sessionID, req)
	if err != nil {
		// Terminal failure: release the guard so the user can retry
		s.redisClient.Del(ctx, guardKey)
		return nil, err
	}

	return record, nil
}

func (s *Service) submit(ctx context.Context, sessionID string, req *SubmitRequest) (*Record, error) {
	current, err := s.cartService.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(current.Items) == 0 {
		return nil, ErrEmptyCart
	}

	payload, err := s.builder.Build(current, req.Customer, req.Options)
	if err != nil {
		return nil, err
	}

	csrfToken, err := s.billing.GetCSRFToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch CSRF token: %w", err)
	}

	result, err := s.billing.CreateOrder(ctx, payload, csrfToken)
	if err != nil {
		var apiErr *hostbill.APIError
		if errors.As(err, &apiErr) && len(apiErr.FieldErrors) > 0 {
			// Surface the API's field-level rejections in the same shape
			// as local schema validation failures
			schemaErr := &SchemaError{}
			for path, message := range apiErr.FieldErrors {
				schemaErr.add(path, message)
			}
			return nil, schemaErr
		}
		return nil, fmt.Errorf("order creation failed: %w", err)
	}

	record, err := s.archive(current, req, result)
	if err != nil {
		// The order exists in the billing system at this point; a failed
		// archive write must not look like a failed order to the caller
		s.logger.WithError(err).WithField("external_id", result.OrderID).Error("Failed to archive submitted order")
	}

	if err := s.cartService.ClearCart(ctx, sessionID); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("Failed to clear cart after order submission")
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":  sessionID,
		"external_id": result.OrderID,
	}).Info("Order submitted")

	return record, nil
}

// archive writes the local order record inside one transaction
func (s *Service) archive(current *cart.Cart, req *SubmitRequest, result *hostbill.OrderResult) (*Record, error) {
	customerType := pricing.CustomerType(req.Customer.Type)

	record := &Record{
		ExternalID:    result.OrderID,
		SessionID:     current.SessionID,
		Status:        OrderStatusSubmitted,
		CustomerType:  req.Customer.Type,
		CustomerEmail: req.Customer.Email,
		MonthlyTotal:  s.engine.MonthlyTotal(current, customerType),
		SetupTotal:    s.engine.SetupTotal(current, customerType),
		Currency:      "SEK",
	}

	for i := range current.Items {
		item := &current.Items[i]
		record.Items = append(record.Items, RecordItem{
			ProductID:    item.ID,
			Name:         item.Name,
			CategoryType: string(item.CategoryType),
			Quantity:     item.Quantity,
			MonthlyPrice: item.MonthlyPrice.String(),
			SetupPrice:   item.SetupPrice.String(),
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		record.OrderNumber = record.GenerateOrderNumber()
		return tx.Model(record).Update("order_number", record.OrderNumber).Error
	})
	if err != nil {
		// The in-memory record still describes the submitted order; the
		// caller gets it even when the archive write fails
		return record, fmt.Errorf("failed to archive order: %w", err)
	}

	return record, nil
}

// GetRecord fetches an archived order by its order number
func (s *Service) GetRecord(orderNumber string) (*Record, error) {
	var record Record
	err := s.db.Preload("Items").Where("order_number = ?", orderNumber).First(&record).Error
	if err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	return &record, nil
}

// MarkSigned flags an archived order as electronically signed
func (s *Service) MarkSigned(orderNumber string) error {
	return s.db.Model(&Record{}).
		Where("order_number = ?", orderNumber).
		Update("status", OrderStatusSigned).Error
}
