package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/buddyshare/buddyshare-api/internal/domain"
)

type fakePaymentRepo struct {
	payments map[uint]domain.Payment
	nextID   uint
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		payments: make(map[uint]domain.Payment),
		nextID:   1,
	}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment domain.Payment) (domain.Payment, error) {
	for _, p := range r.payments {
		if p.StripePaymentIntentID == payment.StripePaymentIntentID {
			return domain.Payment{}, ErrPaymentExists
		}
	}

	payment.ID = r.nextID
	r.nextID++
	r.payments[payment.ID] = payment

	return payment, nil
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uint) (domain.Payment, error) {
	payment, ok := r.payments[id]
	if !ok {
		return domain.Payment{}, ErrPaymentNotFound
	}

	return payment, nil
}

func (r *fakePaymentRepo) FindByIntentID(_ context.Context, intentID string) (domain.Payment, error) {
	for _, p := range r.payments {
		if p.StripePaymentIntentID == intentID {
			return p, nil
		}
	}

	return domain.Payment{}, ErrPaymentNotFound
}

func (r *fakePaymentRepo) FindPendingByUserAndEvent(_ context.Context, userID, eventID uint) (domain.Payment, error) {
	for _, p := range r.payments {
		if p.UserID == userID && p.EventID == eventID && p.Status == domain.PaymentStatusPending {
			return p, nil
		}
	}

	return domain.Payment{}, ErrPaymentNotFound
}

func (r *fakePaymentRepo) HasSucceeded(_ context.Context, userID, eventID uint) (bool, error) {
	for _, p := range r.payments {
		if p.UserID == userID && p.EventID == eventID && p.Status == domain.PaymentStatusSucceeded {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakePaymentRepo) Update(_ context.Context, payment domain.Payment) (domain.Payment, error) {
	if _, ok := r.payments[payment.ID]; !ok {
		return domain.Payment{}, ErrPaymentNotFound
	}
	r.payments[payment.ID] = payment

	return payment, nil
}

func (r *fakePaymentRepo) UpdateStatusByIntentID(_ context.Context, intentID, status, receiptURL string) error {
	for id, p := range r.payments {
		if p.StripePaymentIntentID == intentID {
			p.Status = status
			if receiptURL != "" {
				p.ReceiptURL = receiptURL
			}
			r.payments[id] = p

			return nil
		}
	}

	return ErrPaymentNotFound
}

func (r *fakePaymentRepo) FindByUser(_ context.Context, userID uint, _, _ int) ([]domain.Payment, int64, error) {
	var payments []domain.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			payments = append(payments, p)
		}
	}

	return payments, int64(len(payments)), nil
}

type fakeProvider struct {
	intents      map[string]ProviderIntent
	created      int
	webhookEvent WebhookEvent
	webhookErr   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: make(map[string]ProviderIntent)}
}

func (p *fakeProvider) EnsureCustomer(_ context.Context, _, _ string) (string, error) {
	return "cus_test", nil
}

func (p *fakeProvider) CreateIntent(_ context.Context, _ string, amountMinor int64, currency string, _ map[string]string) (ProviderIntent, error) {
	p.created++
	intent := ProviderIntent{
		ID:           fmt.Sprintf("pi_%d", p.created),
		ClientSecret: fmt.Sprintf("pi_%d_secret", p.created),
		Status:       "requires_payment_method",
		AmountMinor:  amountMinor,
		Currency:     currency,
	}
	p.intents[intent.ID] = intent

	return intent, nil
}

func (p *fakeProvider) RetrieveIntent(_ context.Context, id string) (ProviderIntent, error) {
	intent, ok := p.intents[id]
	if !ok {
		return ProviderIntent{}, errors.New("no such intent")
	}

	return intent, nil
}

func (p *fakeProvider) ConstructWebhookEvent(_ []byte, _ string) (WebhookEvent, error) {
	if p.webhookErr != nil {
		return WebhookEvent{}, p.webhookErr
	}

	return p.webhookEvent, nil
}

func newTestPaymentService(t *testing.T, events ...domain.Event) (*PaymentService, *fakePaymentRepo, *fakeProvider, *fakeEventRepo) {
	t.Helper()

	eventRepo := newFakeEventRepo(events...)
	users := newFakeEventUserRepo(domain.User{ID: 20, Name: "Ben", Email: "ben@example.com"})
	provider := newFakeProvider()
	repo := newFakePaymentRepo()

	svc := NewPaymentService(repo, newTestEventService(eventRepo, users), users, provider, "usd", zap.NewNop())

	return svc, repo, provider, eventRepo
}

func paidEvent() domain.Event {
	event := openEvent()
	event.JoiningFee = 12.50
	return event
}

func TestFreeJoin(t *testing.T) {
	t.Run("joins and records a zero amount payment", func(t *testing.T) {
		svc, repo, _, eventRepo := newTestPaymentService(t, openEvent())

		payment, event, err := svc.FreeJoin(context.Background(), 1, 20)

		require.NoError(t, err)
		assert.Equal(t, float64(0), payment.Amount)
		assert.Equal(t, domain.PaymentStatusSucceeded, payment.Status)
		assert.Equal(t, domain.PaymentMethodFree, payment.PaymentMethod)
		assert.True(t, event.HasParticipant(20))
		stored := eventRepo.events[1]
		assert.True(t, stored.HasParticipant(20))
		assert.Len(t, repo.payments, 1)
	})

	t.Run("fee bearing event is rejected", func(t *testing.T) {
		svc, _, _, _ := newTestPaymentService(t, paidEvent())

		_, _, err := svc.FreeJoin(context.Background(), 1, 20)

		assert.ErrorIs(t, err, ErrPaymentRequired)
	})
}

func TestCreateIntent(t *testing.T) {
	t.Run("creates a pending payment in minor units", func(t *testing.T) {
		svc, repo, provider, _ := newTestPaymentService(t, paidEvent())

		resp, err := svc.CreateIntent(context.Background(), 1, 20)

		require.NoError(t, err)
		assert.Equal(t, "pi_1", resp.IntentID)
		assert.Equal(t, "pi_1_secret", resp.ClientSecret)
		assert.Equal(t, 12.50, resp.Amount)
		assert.Equal(t, "usd", resp.Currency)
		assert.Equal(t, int64(1250), provider.intents["pi_1"].AmountMinor)

		payment := repo.payments[resp.PaymentID]
		assert.Equal(t, domain.PaymentStatusPending, payment.Status)
		assert.Equal(t, domain.PaymentMethodCard, payment.PaymentMethod)
		assert.Equal(t, "cus_test", payment.StripeCustomerID)
	})

	t.Run("free event is rejected", func(t *testing.T) {
		svc, _, _, _ := newTestPaymentService(t, openEvent())

		_, err := svc.CreateIntent(context.Background(), 1, 20)

		assert.ErrorIs(t, err, ErrEventFree)
	})

	t.Run("host cannot open a payment on their own event", func(t *testing.T) {
		svc, _, _, _ := newTestPaymentService(t, paidEvent())

		_, err := svc.CreateIntent(context.Background(), 1, 10)

		assert.ErrorIs(t, err, ErrHostCannotJoin)
	})

	t.Run("reuses a pending payable intent", func(t *testing.T) {
		svc, _, provider, _ := newTestPaymentService(t, paidEvent())

		first, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		second, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		assert.Equal(t, first.IntentID, second.IntentID)
		assert.Equal(t, 1, provider.created)
	})

	t.Run("retires a stale intent and issues a fresh one", func(t *testing.T) {
		svc, repo, provider, _ := newTestPaymentService(t, paidEvent())

		first, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		intent := provider.intents[first.IntentID]
		intent.Status = "canceled"
		provider.intents[first.IntentID] = intent

		second, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		assert.NotEqual(t, first.IntentID, second.IntentID)
		assert.Equal(t, 2, provider.created)
		assert.Equal(t, domain.PaymentStatusFailed, repo.payments[first.PaymentID].Status)
	})

	t.Run("succeeded payment blocks a second charge", func(t *testing.T) {
		svc, repo, _, _ := newTestPaymentService(t, paidEvent())

		resp, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		payment := repo.payments[resp.PaymentID]
		payment.Status = domain.PaymentStatusSucceeded
		repo.payments[resp.PaymentID] = payment

		_, err = svc.CreateIntent(context.Background(), 1, 20)

		assert.ErrorIs(t, err, ErrPaymentProcessed)
	})
}

func TestConfirm(t *testing.T) {
	openIntent := func(t *testing.T, svc *PaymentService) IntentResponse {
		t.Helper()
		resp, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)
		return resp
	}

	t.Run("settles the payment and joins the event", func(t *testing.T) {
		svc, repo, provider, _ := newTestPaymentService(t, paidEvent())
		resp := openIntent(t, svc)

		intent := provider.intents[resp.IntentID]
		intent.Status = "succeeded"
		intent.ReceiptURL = "https://pay.example.com/receipt/1"
		provider.intents[resp.IntentID] = intent

		payment, event, err := svc.Confirm(context.Background(), resp.IntentID, 20)

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusSucceeded, payment.Status)
		assert.Equal(t, "https://pay.example.com/receipt/1", payment.ReceiptURL)
		assert.True(t, event.HasParticipant(20))
		assert.Equal(t, domain.PaymentStatusSucceeded, repo.payments[resp.PaymentID].Status)
	})

	t.Run("provider still collecting", func(t *testing.T) {
		svc, _, _, _ := newTestPaymentService(t, paidEvent())
		resp := openIntent(t, svc)

		_, _, err := svc.Confirm(context.Background(), resp.IntentID, 20)

		assert.ErrorIs(t, err, ErrPaymentNotCompleted)
	})

	t.Run("only the payer may confirm", func(t *testing.T) {
		svc, _, _, _ := newTestPaymentService(t, paidEvent())
		resp := openIntent(t, svc)

		_, _, err := svc.Confirm(context.Background(), resp.IntentID, 99)

		assert.ErrorIs(t, err, ErrNotPaymentOwner)
	})

	t.Run("second confirm conflicts", func(t *testing.T) {
		svc, _, provider, _ := newTestPaymentService(t, paidEvent())
		resp := openIntent(t, svc)

		intent := provider.intents[resp.IntentID]
		intent.Status = "succeeded"
		provider.intents[resp.IntentID] = intent

		_, _, err := svc.Confirm(context.Background(), resp.IntentID, 20)
		require.NoError(t, err)

		_, _, err = svc.Confirm(context.Background(), resp.IntentID, 20)

		assert.ErrorIs(t, err, ErrPaymentProcessed)
	})

	t.Run("unknown intent", func(t *testing.T) {
		svc, _, _, _ := newTestPaymentService(t, paidEvent())

		_, _, err := svc.Confirm(context.Background(), "pi_missing", 20)

		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestHandleWebhook(t *testing.T) {
	t.Run("bad signature is surfaced", func(t *testing.T) {
		svc, _, provider, _ := newTestPaymentService(t, paidEvent())
		provider.webhookErr = fmt.Errorf("%w: bad signature", ErrWebhookSignature)

		err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

		assert.ErrorIs(t, err, ErrWebhookSignature)
	})

	t.Run("intent succeeded settles the payment and joins", func(t *testing.T) {
		svc, repo, provider, eventRepo := newTestPaymentService(t, paidEvent())

		resp, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		provider.webhookEvent = WebhookEvent{
			Type:       WebhookIntentSucceeded,
			IntentID:   resp.IntentID,
			ReceiptURL: "https://pay.example.com/receipt/2",
		}

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

		payment := repo.payments[resp.PaymentID]
		assert.Equal(t, domain.PaymentStatusSucceeded, payment.Status)
		assert.Equal(t, "https://pay.example.com/receipt/2", payment.ReceiptURL)
		stored := eventRepo.events[1]
		assert.True(t, stored.HasParticipant(20))
	})

	t.Run("webhook after confirm does not double join", func(t *testing.T) {
		svc, _, provider, eventRepo := newTestPaymentService(t, paidEvent())

		resp, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		intent := provider.intents[resp.IntentID]
		intent.Status = "succeeded"
		provider.intents[resp.IntentID] = intent

		_, _, err = svc.Confirm(context.Background(), resp.IntentID, 20)
		require.NoError(t, err)

		provider.webhookEvent = WebhookEvent{Type: WebhookIntentSucceeded, IntentID: resp.IntentID}
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

		assert.Equal(t, 1, eventRepo.events[1].CurrentParticipants)
	})

	t.Run("charge succeeded settles the payment and joins", func(t *testing.T) {
		svc, repo, provider, eventRepo := newTestPaymentService(t, paidEvent())

		resp, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		provider.webhookEvent = WebhookEvent{
			Type:       WebhookChargeSucceeded,
			IntentID:   resp.IntentID,
			ReceiptURL: "https://pay.example.com/receipt/3",
		}

		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

		payment := repo.payments[resp.PaymentID]
		assert.Equal(t, domain.PaymentStatusSucceeded, payment.Status)
		assert.Equal(t, "https://pay.example.com/receipt/3", payment.ReceiptURL)
		stored := eventRepo.events[1]
		assert.True(t, stored.HasParticipant(20))
	})

	t.Run("charge failed marks the payment failed", func(t *testing.T) {
		svc, repo, provider, _ := newTestPaymentService(t, paidEvent())

		resp, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		provider.webhookEvent = WebhookEvent{Type: WebhookChargeFailed, IntentID: resp.IntentID}
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

		assert.Equal(t, domain.PaymentStatusFailed, repo.payments[resp.PaymentID].Status)
	})

	t.Run("failed intent marks the payment failed", func(t *testing.T) {
		svc, repo, provider, _ := newTestPaymentService(t, paidEvent())

		resp, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		provider.webhookEvent = WebhookEvent{Type: WebhookIntentFailed, IntentID: resp.IntentID}
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

		assert.Equal(t, domain.PaymentStatusFailed, repo.payments[resp.PaymentID].Status)
	})

	t.Run("refund marks the payment refunded", func(t *testing.T) {
		svc, repo, provider, _ := newTestPaymentService(t, paidEvent())

		resp, err := svc.CreateIntent(context.Background(), 1, 20)
		require.NoError(t, err)

		provider.webhookEvent = WebhookEvent{Type: WebhookChargeRefunded, IntentID: resp.IntentID}
		require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

		assert.Equal(t, domain.PaymentStatusRefunded, repo.payments[resp.PaymentID].Status)
	})

	t.Run("unknown event types are acknowledged", func(t *testing.T) {
		svc, _, provider, _ := newTestPaymentService(t, paidEvent())
		provider.webhookEvent = WebhookEvent{Type: "customer.updated"}

		assert.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	})
}

func TestPaymentDetails(t *testing.T) {
	svc, repo, _, _ := newTestPaymentService(t, paidEvent())

	payment, err := repo.Create(context.Background(), domain.Payment{
		UserID:                20,
		EventID:               1,
		Amount:                12.50,
		StripePaymentIntentID: "pi_owned",
		Status:                domain.PaymentStatusPending,
	})
	require.NoError(t, err)

	t.Run("owner may read", func(t *testing.T) {
		got, err := svc.Details(context.Background(), payment.ID, 20, domain.RoleUser)

		require.NoError(t, err)
		assert.Equal(t, payment.ID, got.ID)
	})

	t.Run("admin may read", func(t *testing.T) {
		_, err := svc.Details(context.Background(), payment.ID, 99, domain.RoleAdmin)

		assert.NoError(t, err)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := svc.Details(context.Background(), payment.ID, 99, domain.RoleUser)

		assert.ErrorIs(t, err, ErrNotPaymentOwner)
	})
}
