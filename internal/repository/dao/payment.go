package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentExists   = errors.New("payment already recorded for this intent")
)

type Payment struct {
	ID uint `gorm:"primaryKey"`

	UserID uint `gorm:"not null;index"`
	User   User `gorm:"foreignKey:UserID"`

	EventID uint  `gorm:"not null;index"`
	Event   Event `gorm:"foreignKey:EventID"`

	Amount   float64 `gorm:"not null"`
	Currency string  `gorm:"not null;default:USD"`

	StripePaymentIntentID string `gorm:"uniqueIndex;not null"`
	StripeCustomerID      string

	Status        string `gorm:"not null;default:pending;index"`
	PaymentMethod string `gorm:"not null;default:card"`
	ReceiptURL    string

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

type PaymentDAO struct {
	db *gorm.DB
}

func NewPaymentDAO(db *gorm.DB) *PaymentDAO {
	return &PaymentDAO{
		db: db,
	}
}

func (d *PaymentDAO) Insert(ctx context.Context, payment Payment) (Payment, error) {
	result := d.db.WithContext(ctx).Create(&payment)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return Payment{}, ErrPaymentExists
		}

		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *PaymentDAO) FindByID(ctx context.Context, id uint) (Payment, error) {
	var payment Payment

	result := d.db.WithContext(ctx).
		Preload("Event").
		Preload("User").
		First(&payment, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}

		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *PaymentDAO) FindByIntentID(ctx context.Context, intentID string) (Payment, error) {
	var payment Payment

	result := d.db.WithContext(ctx).First(&payment, "stripe_payment_intent_id = ?", intentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}

		return Payment{}, result.Error
	}

	return payment, nil
}

// FindPendingByUserAndEvent returns the newest pending payment for the
// pair, used to reuse an intent instead of stacking duplicates.
func (d *PaymentDAO) FindPendingByUserAndEvent(ctx context.Context, userID, eventID uint) (Payment, error) {
	var payment Payment

	result := d.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ? AND status = ?", userID, eventID, "pending").
		Order("created_at DESC").
		First(&payment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Payment{}, ErrPaymentNotFound
		}

		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *PaymentDAO) HasSucceeded(ctx context.Context, userID, eventID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Payment{}).
		Where("user_id = ? AND event_id = ? AND status = ?", userID, eventID, "succeeded").
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *PaymentDAO) Update(ctx context.Context, payment Payment) (Payment, error) {
	result := d.db.WithContext(ctx).
		Omit("Event", "User").
		Save(&payment)
	if result.Error != nil {
		return Payment{}, result.Error
	}

	return payment, nil
}

// UpdateStatusByIntentID transitions a payment by its provider intent id.
// Used by the webhook path; a missing row is reported so the caller can
// log and acknowledge anyway.
func (d *PaymentDAO) UpdateStatusByIntentID(ctx context.Context, intentID, status, receiptURL string) error {
	updates := map[string]interface{}{"status": status}
	if receiptURL != "" {
		updates["receipt_url"] = receiptURL
	}

	result := d.db.WithContext(ctx).Model(&Payment{}).
		Where("stripe_payment_intent_id = ?", intentID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

func (d *PaymentDAO) FindByUser(ctx context.Context, userID uint, offset, limit int) ([]Payment, int64, error) {
	var total int64

	if err := d.db.WithContext(ctx).Model(&Payment{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []Payment
	result := d.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return payments, total, nil
}
