// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OrderStatus represents the archive status of a submitted order
type OrderStatus string

const (
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusSigned    OrderStatus = "signed"
	OrderStatusFailed    OrderStatus = "failed"
)

// Record is the local archive row for an order submitted to the billing
// system. The billing system owns the order; this table exists for support
// and troubleshooting.
type Record struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OrderNumber   string      `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	ExternalID    string      `gorm:"index;size:100" json:"external_id"`
	SessionID     string      `gorm:"index;size:100" json:"session_id"`
	Status        OrderStatus `gorm:"not null;default:'submitted'" json:"status"`
	CustomerType  string      `gorm:"size:20" json:"customer_type"`
	CustomerEmail string      `gorm:"not null;size:255" json:"customer_email"`

	// Tax-inclusive totals at submission time, in whole kronor
	MonthlyTotal int64  `gorm:"not null" json:"monthly_total"`
	SetupTotal   int64  `gorm:"not null" json:"setup_total"`
	Currency     string `gorm:"size:3;default:'SEK'" json:"currency"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items []RecordItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// RecordItem is one archived line of a submitted order
type RecordItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrderID      uint      `gorm:"not null;index" json:"order_id"`
	ProductID    int       `gorm:"not null;index" json:"product_id"`
	Name         string    `gorm:"size:255" json:"name"`
	CategoryType string    `gorm:"size:50" json:"category_type"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	MonthlyPrice string    `gorm:"size:20" json:"monthly_price"`
	SetupPrice   string    `gorm:"size:20" json:"setup_price"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides
func (Record) TableName() string     { return "order_records" }
func (RecordItem) TableName() string { return "order_record_items" }

// GenerateOrderNumber generates a unique order number
func (r *Record) GenerateOrderNumber() string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), r.ID)
}
