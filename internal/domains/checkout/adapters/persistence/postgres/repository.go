package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&orderRecord{})
	}
	return repo
}

// orderRecord maps the order aggregate to a relational table. Line items are
// stored as a JSON snapshot; product ids are mirrored into an array column so
// "orders containing product X" stays a plain indexed query.
type orderRecord struct {
	ID               string            `gorm:"primaryKey;column:id;type:uuid"`
	UserID           string            `gorm:"column:user_id;index:idx_orders_user_status"`
	Items            []domain.LineItem `gorm:"column:items;type:jsonb;serializer:json"`
	ProductIDs       pq.StringArray    `gorm:"column:product_ids;type:text[]"`
	ShippingAddress  domain.Address    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress   domain.Address    `gorm:"column:billing_address;type:jsonb;serializer:json"`
	PaymentMethod    string            `gorm:"column:payment_method;type:varchar(32)"`
	Subtotal         float64           `gorm:"column:subtotal"`
	Tax              float64           `gorm:"column:tax"`
	ShippingCost     float64           `gorm:"column:shipping_cost"`
	Total            float64           `gorm:"column:total"`
	OrderStatus      string            `gorm:"column:order_status;type:varchar(32);index:idx_orders_user_status"`
	PaymentStatus    string            `gorm:"column:payment_status;type:varchar(32);index"`
	TransactionID    string            `gorm:"column:transaction_id;index"`
	PaymentExpiresAt *time.Time        `gorm:"column:payment_expires_at"`
	CreatedAt        time.Time         `gorm:"column:created_at;index"`
	UpdatedAt        time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Save inserts or updates an order, assigning an id on first insert.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"items":              record.Items,
				"product_ids":        record.ProductIDs,
				"shipping_address":   record.ShippingAddress,
				"billing_address":    record.BillingAddress,
				"payment_method":     record.PaymentMethod,
				"subtotal":           record.Subtotal,
				"tax":                record.Tax,
				"shipping_cost":      record.ShippingCost,
				"total":              record.Total,
				"order_status":       record.OrderStatus,
				"payment_status":     record.PaymentStatus,
				"transaction_id":     record.TransactionID,
				"payment_expires_at": record.PaymentExpiresAt,
				"updated_at":         gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListByUser pages through one user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, query ports.OrderQuery) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	return r.list(ctx, r.scoped(ctx, query).Where("user_id = ?", userID), query)
}

// ListAll pages through every order, newest first.
func (r *Repository) ListAll(ctx context.Context, query ports.OrderQuery) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	return r.list(ctx, r.scoped(ctx, query), query)
}

func (r *Repository) scoped(ctx context.Context, query ports.OrderQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&orderRecord{})
	if query.Status != "" {
		tx = tx.Where("order_status = ?", string(query.Status))
	}
	if query.PaymentStatus != "" {
		tx = tx.Where("payment_status = ?", string(query.PaymentStatus))
	}
	return tx
}

func (r *Repository) list(ctx context.Context, tx *gorm.DB, query ports.OrderQuery) ([]*domain.Order, int64, error) {
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []orderRecord
	if err := tx.
		Order("created_at DESC, id DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, total, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	productIDs := make(pq.StringArray, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	return orderRecord{
		ID:               order.ID,
		UserID:           order.UserID,
		Items:            order.Items,
		ProductIDs:       productIDs,
		ShippingAddress:  order.ShippingAddress,
		BillingAddress:   order.BillingAddress,
		PaymentMethod:    string(order.PaymentMethod),
		Subtotal:         order.Subtotal,
		Tax:              order.Tax,
		ShippingCost:     order.ShippingCost,
		Total:            order.Total,
		OrderStatus:      string(order.OrderStatus),
		PaymentStatus:    string(order.PaymentStatus),
		TransactionID:    order.TransactionID,
		PaymentExpiresAt: order.PaymentExpiresAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	return &domain.Order{
		ID:               r.ID,
		UserID:           r.UserID,
		Items:            r.Items,
		ShippingAddress:  r.ShippingAddress,
		BillingAddress:   r.BillingAddress,
		PaymentMethod:    domain.PaymentMethod(r.PaymentMethod),
		Subtotal:         r.Subtotal,
		Tax:              r.Tax,
		ShippingCost:     r.ShippingCost,
		Total:            r.Total,
		OrderStatus:      domain.OrderStatus(r.OrderStatus),
		PaymentStatus:    domain.PaymentStatus(r.PaymentStatus),
		TransactionID:    r.TransactionID,
		PaymentExpiresAt: r.PaymentExpiresAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
