package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the checkout bounded context. Intended to replace
// adapter-level automigrate when a dedicated migration step is preferred.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&checkoutSessionRecord{},
	)
}

// Order schema mirrors the checkout Postgres adapter.
type orderRecord struct {
	ID               string         `gorm:"primaryKey;column:id;type:uuid"`
	UserID           string         `gorm:"column:user_id;index:idx_orders_user_status"`
	Items            []byte         `gorm:"column:items;type:jsonb"`
	ProductIDs       pq.StringArray `gorm:"column:product_ids;type:text[]"`
	ShippingAddress  []byte         `gorm:"column:shipping_address;type:jsonb"`
	BillingAddress   []byte         `gorm:"column:billing_address;type:jsonb"`
	PaymentMethod    string         `gorm:"column:payment_method;type:varchar(32)"`
	Subtotal         float64        `gorm:"column:subtotal"`
	Tax              float64        `gorm:"column:tax"`
	ShippingCost     float64        `gorm:"column:shipping_cost"`
	Total            float64        `gorm:"column:total"`
	OrderStatus      string         `gorm:"column:order_status;type:varchar(32);index:idx_orders_user_status"`
	PaymentStatus    string         `gorm:"column:payment_status;type:varchar(32);index"`
	TransactionID    string         `gorm:"column:transaction_id;index"`
	PaymentExpiresAt *time.Time     `gorm:"column:payment_expires_at"`
	CreatedAt        time.Time      `gorm:"column:created_at;index"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Checkout session schema mirrors the session store.
type checkoutSessionRecord struct {
	UserID           string     `gorm:"primaryKey;column:user_id"`
	State            string     `gorm:"column:state;type:varchar(32)"`
	OrderID          string     `gorm:"column:order_id;index"`
	PaymentMethod    string     `gorm:"column:payment_method;type:varchar(32)"`
	PaymentStatus    string     `gorm:"column:payment_status;type:varchar(32)"`
	TransactionID    string     `gorm:"column:transaction_id"`
	PaymentURL       string     `gorm:"column:payment_url"`
	PaymentExpiresAt *time.Time `gorm:"column:payment_expires_at;index"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;index"`
}

func (checkoutSessionRecord) TableName() string { return "checkout_sessions" }
