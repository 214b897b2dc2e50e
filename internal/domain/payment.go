package domain

import (
	"fmt"
	"time"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

const (
	PaymentMethodCard = "card"
	PaymentMethodFree = "free"
)

type Payment struct {
	ID      uint `json:"id"`
	UserID  uint `json:"user_id"`
	EventID uint `json:"event_id"`

	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`

	StripePaymentIntentID string `json:"stripe_payment_intent_id"`
	StripeCustomerID      string `json:"stripe_customer_id,omitempty"`

	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	ReceiptURL    string `json:"receipt_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) IsPayable() bool {
	return p.Status == PaymentStatusPending
}

// FreeJoinIntentID builds the sentinel transaction id recorded for free
// joins, which never touch the payment provider. Including both ids keeps
// the provider-intent-id uniqueness constraint intact per (user, event).
func FreeJoinIntentID(eventID, userID uint) string {
	return fmt.Sprintf("free-join-%d-%d", eventID, userID)
}
