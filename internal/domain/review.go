package domain

import (
	"math"
	"time"
)

type Review struct {
	ID      uint `json:"id"`
	UserID  uint `json:"user_id"`
	HostID  uint `json:"host_id"`
	EventID uint `json:"event_id"`

	Rating  int    `json:"rating"`
	Comment string `json:"comment"`

	Reviewer *User  `json:"reviewer,omitempty"`
	Event    *Event `json:"event,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AggregateRatings computes the host rating aggregate from a full scan of
// the host's reviews: the mean rounded to one decimal, and the count.
// Zero reviews resets the aggregate to (0, 0).
func AggregateRatings(ratings []int) (average float64, total int) {
	if len(ratings) == 0 {
		return 0, 0
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	average = math.Round(float64(sum)/float64(len(ratings))*10) / 10

	return average, len(ratings)
}
