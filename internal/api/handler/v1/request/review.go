package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateReviewRequest struct {
	EventID uint   `json:"event_id"`
	Rating  uint   `json:"rating"`
	Comment string `json:"comment"`
}

func (req *CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.Rating, validation.Required, validation.Min(uint(1)), validation.Max(uint(5))),
		validation.Field(&req.Comment, validation.Length(0, 1000)),
	)
}

type UpdateReviewRequest struct {
	Rating  uint   `json:"rating"`
	Comment string `json:"comment"`
}

func (req *UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Rating, validation.Required, validation.Min(uint(1)), validation.Max(uint(5))),
		validation.Field(&req.Comment, validation.Length(0, 1000)),
	)
}
