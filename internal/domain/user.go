package domain

import "time"

const (
	RoleUser  = "user"
	RoleHost  = "host"
	RoleAdmin = "admin"
)

const (
	HostRequestPending  = "pending"
	HostRequestApproved = "approved"
	HostRequestRejected = "rejected"
)

type User struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`

	GoogleID     string `json:"-"`
	IsGoogleUser bool   `json:"is_google_user"`

	Role       string   `json:"role"`
	Avatar     string   `json:"avatar"`
	Bio        string   `json:"bio"`
	Location   string   `json:"location"`
	Interests  []string `json:"interests"`
	IsVerified bool     `json:"is_verified"`

	// Recomputed from reviews, never edited directly.
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`

	EventsHosted int `json:"events_hosted"`

	HostRequest *HostRequest `json:"host_request,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HostRequest struct {
	Requested       bool       `json:"requested"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason"`
	RequestedAt     *time.Time `json:"requested_at,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovedBy      uint       `json:"approved_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectedBy      uint       `json:"rejected_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

type UserStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalHosts    int64 `json:"total_hosts"`
	TotalAdmins   int64 `json:"total_admins"`
	VerifiedUsers int64 `json:"verified_users"`
	NewUsers      int64 `json:"new_users"`
	RegularUsers  int64 `json:"regular_users"`
}

type HostRequestStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Recent   int64 `json:"recent"`
}

func (u *User) IsHost() bool {
	return u.Role == RoleHost || u.Role == RoleAdmin
}

func (u *User) HasPendingHostRequest() bool {
	return u.HostRequest != nil && u.HostRequest.Requested && u.HostRequest.Status == HostRequestPending
}
