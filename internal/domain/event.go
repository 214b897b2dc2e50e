package domain

import (
	"strings"
	"time"
)

const (
	EventStatusOpen      = "open"
	EventStatusFull      = "full"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

const (
	MinEventCapacity = 1
	MaxEventCapacity = 5000
)

// LeaveCutoff is the minimum time before an event's start at which a
// participant may still leave. Exactly 24h remaining is allowed.
const LeaveCutoff = 24 * time.Hour

type Event struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	EventType   string `json:"event_type"`

	Date     time.Time `json:"date"`
	Time     string    `json:"time"`
	Location string    `json:"location"`
	Address  string    `json:"address"`

	HostID     uint    `json:"host_id"`
	HostName   string  `json:"host_name"`
	HostEmail  string  `json:"host_email"`
	HostRating float64 `json:"host_rating"`

	Participants        []User `json:"participants,omitempty"`
	MaxParticipants     int    `json:"max_participants"`
	CurrentParticipants int    `json:"current_participants"`

	JoiningFee float64 `json:"joining_fee"`
	Image      string  `json:"image"`
	Status     string  `json:"status"`

	Category string   `json:"category"`
	Tags     []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Event) IsFull() bool {
	return e.CurrentParticipants >= e.MaxParticipants
}

func (e *Event) IsPast(now time.Time) bool {
	return e.Date.Before(now)
}

func (e *Event) HasParticipant(userID uint) bool {
	for _, p := range e.Participants {
		if p.ID == userID {
			return true
		}
	}

	return false
}

// DeriveStatus applies the capacity transitions first and the date-based
// completion last, so a newly full event with a past date still resolves to
// completed. Cancelled is terminal and never derived.
func (e *Event) DeriveStatus(now time.Time) {
	if e.Status == EventStatusCancelled {
		return
	}

	if e.CurrentParticipants >= e.MaxParticipants {
		e.Status = EventStatusFull
	} else if e.Status == EventStatusFull {
		e.Status = EventStatusOpen
	}

	if e.IsPast(now) && (e.Status == EventStatusOpen || e.Status == EventStatusFull) {
		e.Status = EventStatusCompleted
	}
}

// JoinBlockers evaluates every join precondition and returns all failing
// reasons instead of stopping at the first, so clients can render why a
// join button is disabled.
func (e *Event) JoinBlockers(userID uint, now time.Time) []string {
	var reasons []string

	if e.Status != EventStatusOpen {
		reasons = append(reasons, "Event is not open for joining")
	}
	if e.IsFull() {
		reasons = append(reasons, "Event is full")
	}
	if e.HasParticipant(userID) {
		reasons = append(reasons, "Already joined this event")
	}
	if e.HostID == userID {
		reasons = append(reasons, "Host cannot join their own event")
	}
	if e.IsPast(now) {
		reasons = append(reasons, "Cannot join past events")
	}

	return reasons
}

// CanLeave reports whether a participant may still leave before the event
// starts. Exactly LeaveCutoff remaining is allowed, anything less is not.
func (e *Event) CanLeave(now time.Time) bool {
	return e.Date.Sub(now) >= LeaveCutoff
}

// NormalizeTags lowercases, trims and deduplicates the tags in place,
// preserving first-seen order.
func (e *Event) NormalizeTags() {
	seen := make(map[string]bool, len(e.Tags))
	cleaned := e.Tags[:0]

	for _, tag := range e.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}

	e.Tags = cleaned
}

// ValidImage accepts empty values, absolute URLs, locally served upload
// paths and inline data URIs.
func ValidImage(v string) bool {
	if v == "" {
		return true
	}

	return strings.HasPrefix(v, "http") ||
		strings.HasPrefix(v, "/uploads/") ||
		strings.HasPrefix(v, "data:image")
}
