package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository"
)

var (
	ErrPaymentNotFound     = repository.ErrPaymentNotFound
	ErrPaymentExists       = repository.ErrPaymentExists
	ErrEventFree           = errors.New("event is free to join")
	ErrPaymentProcessed    = errors.New("payment already processed")
	ErrPaymentNotCompleted = errors.New("payment has not completed")
	ErrNotPaymentOwner     = errors.New("not authorized for this payment")

	// ErrWebhookSignature marks a webhook delivery whose signature did not
	// verify. Everything else that goes wrong after verification is logged
	// and acknowledged so the provider stops retrying.
	ErrWebhookSignature = errors.New("invalid webhook signature")
)

// Webhook event types the payment flow reacts to.
const (
	WebhookIntentSucceeded = "payment_intent.succeeded"
	WebhookIntentFailed    = "payment_intent.payment_failed"
	WebhookIntentCanceled  = "payment_intent.canceled"
	WebhookChargeSucceeded = "charge.succeeded"
	WebhookChargeFailed    = "charge.failed"
	WebhookChargeRefunded  = "charge.refunded"
)

// ProviderIntent is the provider-neutral view of a payment intent.
type ProviderIntent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
	ReceiptURL   string
}

// Payable reports whether the intent can still collect a payment.
func (i ProviderIntent) Payable() bool {
	return i.Status != "succeeded" && i.Status != "canceled"
}

// WebhookEvent is a verified provider notification.
type WebhookEvent struct {
	Type       string
	IntentID   string
	ReceiptURL string
}

// PaymentProvider is the slice of the payment processor the service
// needs. Implementations must return ErrWebhookSignature (wrapped or
// bare) when a webhook payload fails verification.
type PaymentProvider interface {
	EnsureCustomer(ctx context.Context, email, name string) (string, error)
	CreateIntent(ctx context.Context, customerID string, amountMinor int64, currency string, metadata map[string]string) (ProviderIntent, error)
	RetrieveIntent(ctx context.Context, id string) (ProviderIntent, error)
	ConstructWebhookEvent(payload []byte, signature string) (WebhookEvent, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	FindByID(ctx context.Context, id uint) (domain.Payment, error)
	FindByIntentID(ctx context.Context, intentID string) (domain.Payment, error)
	FindPendingByUserAndEvent(ctx context.Context, userID, eventID uint) (domain.Payment, error)
	HasSucceeded(ctx context.Context, userID, eventID uint) (bool, error)
	Update(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	UpdateStatusByIntentID(ctx context.Context, intentID, status, receiptURL string) error
	FindByUser(ctx context.Context, userID uint, offset, limit int) ([]domain.Payment, int64, error)
}

// PaymentEventService is the slice of the event workflow the payment
// flow drives.
type PaymentEventService interface {
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	CheckJoin(ctx context.Context, eventID, userID uint) error
	CompletePaidJoin(ctx context.Context, eventID, userID uint) (domain.Event, error)
}

type PaymentUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// IntentResponse carries what a client needs to finish a card payment.
type IntentResponse struct {
	PaymentID    uint    `json:"payment_id"`
	IntentID     string  `json:"payment_intent_id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

type PaymentService struct {
	repo     PaymentRepository
	events   PaymentEventService
	userRepo PaymentUserRepository
	provider PaymentProvider
	currency string
	logger   *zap.Logger
}

func NewPaymentService(repo PaymentRepository, events PaymentEventService, userRepo PaymentUserRepository, provider PaymentProvider, currency string, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		events:   events,
		userRepo: userRepo,
		provider: provider,
		currency: currency,
		logger:   logger,
	}
}

// FreeJoin joins a zero-fee event and records a zero-amount succeeded
// payment so the payment history still shows the booking. The provider
// is never contacted.
func (s *PaymentService) FreeJoin(ctx context.Context, eventID, userID uint) (domain.Payment, domain.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Payment{}, domain.Event{}, err
	}
	if event.JoiningFee > 0 {
		return domain.Payment{}, domain.Event{}, ErrPaymentRequired
	}

	joined, err := s.events.CompletePaidJoin(ctx, eventID, userID)
	if err != nil {
		return domain.Payment{}, domain.Event{}, err
	}

	payment, err := s.repo.Create(ctx, domain.Payment{
		UserID:                userID,
		EventID:               eventID,
		Amount:                0,
		Currency:              s.currency,
		StripePaymentIntentID: domain.FreeJoinIntentID(eventID, userID),
		Status:                domain.PaymentStatusSucceeded,
		PaymentMethod:         domain.PaymentMethodFree,
	})
	if err != nil {
		if errors.Is(err, ErrPaymentExists) {
			existing, ferr := s.repo.FindByIntentID(ctx, domain.FreeJoinIntentID(eventID, userID))
			if ferr != nil {
				return domain.Payment{}, domain.Event{}, ferr
			}

			return existing, joined, nil
		}

		return domain.Payment{}, domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return payment, joined, nil
}

// CreateIntent opens (or resumes) a card payment for a fee-bearing
// event. An existing pending payment whose intent can still collect is
// reused instead of piling up abandoned intents.
func (s *PaymentService) CreateIntent(ctx context.Context, eventID, userID uint) (IntentResponse, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return IntentResponse{}, err
	}
	if event.JoiningFee <= 0 {
		return IntentResponse{}, ErrEventFree
	}

	if err := s.events.CheckJoin(ctx, eventID, userID); err != nil {
		return IntentResponse{}, err
	}

	// A succeeded payment whose join has not landed yet (webhook in
	// flight) must not be charged a second time.
	paid, err := s.repo.HasSucceeded(ctx, userID, eventID)
	if err != nil {
		return IntentResponse{}, fmt.Errorf("s.repo.HasSucceeded -> %w", err)
	}
	if paid {
		return IntentResponse{}, ErrPaymentProcessed
	}

	if pending, err := s.repo.FindPendingByUserAndEvent(ctx, userID, eventID); err == nil {
		intent, rerr := s.provider.RetrieveIntent(ctx, pending.StripePaymentIntentID)
		if rerr == nil && intent.Payable() {
			return IntentResponse{
				PaymentID:    pending.ID,
				IntentID:     intent.ID,
				ClientSecret: intent.ClientSecret,
				Amount:       pending.Amount,
				Currency:     pending.Currency,
			}, nil
		}
		// The stale intent can no longer collect. Fail the local record
		// so the fresh one below replaces it.
		if uerr := s.repo.UpdateStatusByIntentID(ctx, pending.StripePaymentIntentID, domain.PaymentStatusFailed, ""); uerr != nil {
			s.logger.Warn("failed to retire stale payment intent",
				zap.String("intent_id", pending.StripePaymentIntentID),
				zap.Error(uerr))
		}
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return IntentResponse{}, fmt.Errorf("s.repo.FindPendingByUserAndEvent -> %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return IntentResponse{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	customerID, err := s.provider.EnsureCustomer(ctx, user.Email, user.Name)
	if err != nil {
		return IntentResponse{}, fmt.Errorf("s.provider.EnsureCustomer -> %w", err)
	}

	amountMinor := int64(math.Round(event.JoiningFee * 100))

	intent, err := s.provider.CreateIntent(ctx, customerID, amountMinor, s.currency, map[string]string{
		"event_id": fmt.Sprint(eventID),
		"user_id":  fmt.Sprint(userID),
	})
	if err != nil {
		return IntentResponse{}, fmt.Errorf("s.provider.CreateIntent -> %w", err)
	}

	payment, err := s.repo.Create(ctx, domain.Payment{
		UserID:                userID,
		EventID:               eventID,
		Amount:                event.JoiningFee,
		Currency:              s.currency,
		StripePaymentIntentID: intent.ID,
		StripeCustomerID:      customerID,
		Status:                domain.PaymentStatusPending,
		PaymentMethod:         domain.PaymentMethodCard,
	})
	if err != nil {
		return IntentResponse{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return IntentResponse{
		PaymentID:    payment.ID,
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       payment.Amount,
		Currency:     payment.Currency,
	}, nil
}

// Confirm settles a payment after the client finished the card flow. The
// provider is the source of truth for the intent status; the local record
// only moves to succeeded once the provider reports it. The join effect
// is idempotent so a webhook landing first does not break the confirm.
func (s *PaymentService) Confirm(ctx context.Context, intentID string, userID uint) (domain.Payment, domain.Event, error) {
	payment, err := s.repo.FindByIntentID(ctx, intentID)
	if err != nil {
		return domain.Payment{}, domain.Event{}, err
	}

	if payment.UserID != userID {
		return domain.Payment{}, domain.Event{}, ErrNotPaymentOwner
	}
	if payment.Status == domain.PaymentStatusSucceeded {
		return domain.Payment{}, domain.Event{}, ErrPaymentProcessed
	}

	intent, err := s.provider.RetrieveIntent(ctx, intentID)
	if err != nil {
		return domain.Payment{}, domain.Event{}, fmt.Errorf("s.provider.RetrieveIntent -> %w", err)
	}
	if intent.Status != "succeeded" {
		return domain.Payment{}, domain.Event{}, ErrPaymentNotCompleted
	}

	payment.Status = domain.PaymentStatusSucceeded
	payment.ReceiptURL = intent.ReceiptURL

	payment, err = s.repo.Update(ctx, payment)
	if err != nil {
		return domain.Payment{}, domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	event, err := s.events.CompletePaidJoin(ctx, payment.EventID, payment.UserID)
	if err != nil {
		return domain.Payment{}, domain.Event{}, err
	}

	return payment, event, nil
}

func (s *PaymentService) History(ctx context.Context, userID uint, offset, limit int) ([]domain.Payment, int64, error) {
	return s.repo.FindByUser(ctx, userID, offset, limit)
}

func (s *PaymentService) Details(ctx context.Context, paymentID, actorID uint, actorRole string) (domain.Payment, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}

	if payment.UserID != actorID && actorRole != domain.RoleAdmin {
		return domain.Payment{}, ErrNotPaymentOwner
	}

	return payment, nil
}

// HandleWebhook verifies and applies a provider notification. A bad
// signature is the only error surfaced to the caller; once the payload
// verifies, failures are logged and the delivery is acknowledged.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ConstructWebhookEvent(payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case WebhookIntentSucceeded, WebhookChargeSucceeded:
		s.applyWebhookSuccess(ctx, event)
	case WebhookIntentFailed, WebhookChargeFailed:
		s.applyWebhookStatus(ctx, event.IntentID, domain.PaymentStatusFailed)
	case WebhookIntentCanceled:
		s.applyWebhookStatus(ctx, event.IntentID, domain.PaymentStatusFailed)
	case WebhookChargeRefunded:
		s.applyWebhookStatus(ctx, event.IntentID, domain.PaymentStatusRefunded)
	default:
		s.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
	}

	return nil
}

func (s *PaymentService) applyWebhookSuccess(ctx context.Context, event WebhookEvent) {
	payment, err := s.repo.FindByIntentID(ctx, event.IntentID)
	if err != nil {
		s.logger.Warn("webhook for unknown intent",
			zap.String("intent_id", event.IntentID), zap.Error(err))
		return
	}

	if payment.Status != domain.PaymentStatusSucceeded {
		if err := s.repo.UpdateStatusByIntentID(ctx, event.IntentID, domain.PaymentStatusSucceeded, event.ReceiptURL); err != nil {
			s.logger.Error("webhook status update failed",
				zap.String("intent_id", event.IntentID), zap.Error(err))
			return
		}
	}

	if _, err := s.events.CompletePaidJoin(ctx, payment.EventID, payment.UserID); err != nil {
		s.logger.Error("webhook join effect failed",
			zap.Uint("event_id", payment.EventID),
			zap.Uint("user_id", payment.UserID),
			zap.Error(err))
	}
}

func (s *PaymentService) applyWebhookStatus(ctx context.Context, intentID, status string) {
	if err := s.repo.UpdateStatusByIntentID(ctx, intentID, status, ""); err != nil {
		s.logger.Warn("webhook status update failed",
			zap.String("intent_id", intentID),
			zap.String("status", status),
			zap.Error(err))
	}
}
