package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore persists checkout session snapshots in PostgreSQL, one row per
// user. This is what lets a checkout survive a reload or a server restart.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	store := &SessionStore{db: db}
	if db != nil {
		_ = db.AutoMigrate(&checkoutSessionRecord{})
	}
	return store
}

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

// Load returns the user's session snapshot, or nil when none exists.
func (s *SessionStore) Load(ctx context.Context, userID string) (*ports.CheckoutSession, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record checkoutSessionRecord
	if err := s.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort(), nil
}

// Save upserts the session snapshot keyed by user.
func (s *SessionStore) Save(ctx context.Context, session ports.CheckoutSession) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if strings.TrimSpace(session.UserID) == "" {
		return errors.New("session user id is required")
	}
	record := checkoutSessionRecord{
		UserID:           session.UserID,
		State:            string(session.State),
		OrderID:          session.OrderID,
		PaymentMethod:    string(session.PaymentMethod),
		PaymentStatus:    string(session.PaymentStatus),
		TransactionID:    session.TransactionID,
		PaymentURL:       session.PaymentURL,
		PaymentExpiresAt: session.PaymentExpiresAt,
		UpdatedAt:        session.UpdatedAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"state", "order_id", "payment_method", "payment_status",
				"transaction_id", "payment_url", "payment_expires_at", "updated_at",
			}),
		}).
		Create(&record).Error
}

// Delete removes the user's session snapshot.
func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&checkoutSessionRecord{}, "user_id = ?", userID).Error
}

// PurgeExpired removes sessions whose payment window elapsed more than the
// grace period ago. Sessions without an expiry are never purged here.
func (s *SessionStore) PurgeExpired(ctx context.Context, grace time.Duration) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-grace)
	result := s.db.WithContext(ctx).
		Where("payment_expires_at IS NOT NULL AND payment_expires_at <= ?", cutoff).
		Delete(&checkoutSessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres checkout session store not configured")
	}
	return nil
}

func (r checkoutSessionRecord) toPort() *ports.CheckoutSession {
	return &ports.CheckoutSession{
		UserID:           r.UserID,
		State:            domain.State(r.State),
		OrderID:          r.OrderID,
		PaymentMethod:    domain.PaymentMethod(r.PaymentMethod),
		PaymentStatus:    domain.PaymentStatus(r.PaymentStatus),
		TransactionID:    r.TransactionID,
		PaymentURL:       r.PaymentURL,
		PaymentExpiresAt: r.PaymentExpiresAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
