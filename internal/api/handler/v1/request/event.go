package request

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/buddyshare/buddyshare-api/internal/domain"
)

var (
	timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	errInvalidImage = errors.New("image must be a URL, an upload path or a data URI")
)

func imageRule(value interface{}) error {
	s, _ := value.(string)
	if !domain.ValidImage(s) {
		return errInvalidImage
	}

	return nil
}

type CreateEventRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	EventType       string   `json:"event_type"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Location        string   `json:"location"`
	Address         string   `json:"address"`
	MaxParticipants int      `json:"max_participants"`
	JoiningFee      float64  `json:"joining_fee"`
	Image           string   `json:"image"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(3, 100)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.EventType, validation.Required),
		validation.Field(&req.Date, validation.Required),
		validation.Field(&req.Time, validation.Match(timeOfDayPattern)),
		validation.Field(&req.Location, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.MaxParticipants, validation.Required,
			validation.Min(domain.MinEventCapacity), validation.Max(domain.MaxEventCapacity)),
		validation.Field(&req.JoiningFee, validation.Min(0.0)),
		validation.Field(&req.Image, validation.By(imageRule)),
		validation.Field(&req.Tags, validation.Length(0, 20)),
	)
}

// UpdateEventRequest uses pointers so absent fields are left untouched.
// Status only accepts cancellation; every other status is derived.
type UpdateEventRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	EventType       *string  `json:"event_type"`
	Date            *string  `json:"date"`
	Time            *string  `json:"time"`
	Location        *string  `json:"location"`
	Address         *string  `json:"address"`
	MaxParticipants *int     `json:"max_participants"`
	JoiningFee      *float64 `json:"joining_fee"`
	Image           *string  `json:"image"`
	Category        *string  `json:"category"`
	Tags            []string `json:"tags"`
	Status          *string  `json:"status"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Length(3, 100)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.Time, validation.Match(timeOfDayPattern)),
		validation.Field(&req.Location, validation.Length(1, 100)),
		validation.Field(&req.MaxParticipants,
			validation.Min(domain.MinEventCapacity), validation.Max(domain.MaxEventCapacity)),
		validation.Field(&req.JoiningFee, validation.Min(0.0)),
		validation.Field(&req.Image, validation.By(imageRule)),
		validation.Field(&req.Tags, validation.Length(0, 20)),
		validation.Field(&req.Status, validation.In(domain.EventStatusCancelled)),
	)
}

type RemoveParticipantRequest struct {
	UserID uint `json:"user_id"`
}

func (req *RemoveParticipantRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.UserID, validation.Required),
	)
}
