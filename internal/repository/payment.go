package repository

import (
	"context"

	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository/dao"
)

var (
	ErrPaymentNotFound = dao.ErrPaymentNotFound
	ErrPaymentExists   = dao.ErrPaymentExists
)

type PaymentRepository struct {
	dao   *dao.PaymentDAO
	eRepo *EventRepository
}

func NewPaymentRepository(d *dao.PaymentDAO, eRepo *EventRepository) *PaymentRepository {
	return &PaymentRepository{
		dao:   d,
		eRepo: eRepo,
	}
}

func (r *PaymentRepository) daoToDomain(p dao.Payment) domain.Payment {
	return domain.Payment{
		ID:                    p.ID,
		UserID:                p.UserID,
		EventID:               p.EventID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		StripePaymentIntentID: p.StripePaymentIntentID,
		StripeCustomerID:      p.StripeCustomerID,
		Status:                p.Status,
		PaymentMethod:         p.PaymentMethod,
		ReceiptURL:            p.ReceiptURL,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (r *PaymentRepository) domainToDao(p domain.Payment) dao.Payment {
	return dao.Payment{
		ID:                    p.ID,
		UserID:                p.UserID,
		EventID:               p.EventID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		StripePaymentIntentID: p.StripePaymentIntentID,
		StripeCustomerID:      p.StripeCustomerID,
		Status:                p.Status,
		PaymentMethod:         p.PaymentMethod,
		ReceiptURL:            p.ReceiptURL,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(payment))
	if err != nil {
		return domain.Payment{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint) (domain.Payment, error) {
	payment, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}

	return r.daoToDomain(payment), nil
}

func (r *PaymentRepository) FindByIntentID(ctx context.Context, intentID string) (domain.Payment, error) {
	payment, err := r.dao.FindByIntentID(ctx, intentID)
	if err != nil {
		return domain.Payment{}, err
	}

	return r.daoToDomain(payment), nil
}

func (r *PaymentRepository) FindPendingByUserAndEvent(ctx context.Context, userID, eventID uint) (domain.Payment, error) {
	payment, err := r.dao.FindPendingByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return domain.Payment{}, err
	}

	return r.daoToDomain(payment), nil
}

func (r *PaymentRepository) HasSucceeded(ctx context.Context, userID, eventID uint) (bool, error) {
	return r.dao.HasSucceeded(ctx, userID, eventID)
}

func (r *PaymentRepository) Update(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(payment))
	if err != nil {
		return domain.Payment{}, err
	}

	return r.daoToDomain(updated), nil
}

func (r *PaymentRepository) UpdateStatusByIntentID(ctx context.Context, intentID, status, receiptURL string) error {
	return r.dao.UpdateStatusByIntentID(ctx, intentID, status, receiptURL)
}

func (r *PaymentRepository) FindByUser(ctx context.Context, userID uint, offset, limit int) ([]domain.Payment, int64, error) {
	payments, total, err := r.dao.FindByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.Payment, len(payments))
	for i, p := range payments {
		result[i] = r.daoToDomain(p)
	}

	return result, total, nil
}
