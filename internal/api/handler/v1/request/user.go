package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdateProfileRequest struct {
	Name      string   `json:"name"`
	Avatar    string   `json:"avatar"`
	Bio       string   `json:"bio"`
	Location  string   `json:"location"`
	Interests []string `json:"interests"`
}

func (req *UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 50)),
		validation.Field(&req.Bio, validation.Length(0, 500)),
		validation.Field(&req.Location, validation.Length(0, 100)),
		validation.Field(&req.Interests, validation.Length(0, 20)),
	)
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (req *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Role, validation.Required, validation.In("user", "host", "admin")),
	)
}

type HostRequestDecision struct {
	Reason string `json:"reason"`
}

func (req *HostRequestDecision) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reason, validation.Length(0, 500)),
	)
}

type BecomeHostRequest struct {
	Message string `json:"message"`
}

func (req *BecomeHostRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Message, validation.Length(0, 500)),
	)
}
