package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateIntentRequest struct {
	EventID uint `json:"event_id"`
}

func (req *CreateIntentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
	)
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

func (req *ConfirmPaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PaymentIntentID, validation.Required),
	)
}

type FreeJoinRequest struct {
	EventID uint `json:"event_id"`
}

func (req *FreeJoinRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
	)
}
