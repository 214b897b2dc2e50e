package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddyshare/buddyshare-api/internal/domain"
)

type fakeReviewRepo struct {
	reviews map[uint]domain.Review
	nextID  uint
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{
		reviews: make(map[uint]domain.Review),
		nextID:  1,
	}
}

func (r *fakeReviewRepo) Create(_ context.Context, review domain.Review) (domain.Review, error) {
	for _, existing := range r.reviews {
		if existing.UserID == review.UserID && existing.EventID == review.EventID {
			return domain.Review{}, ErrReviewExists
		}
	}

	review.ID = r.nextID
	r.nextID++
	r.reviews[review.ID] = review

	return review, nil
}

func (r *fakeReviewRepo) FindByID(_ context.Context, id uint) (domain.Review, error) {
	review, ok := r.reviews[id]
	if !ok {
		return domain.Review{}, ErrReviewNotFound
	}

	return review, nil
}

func (r *fakeReviewRepo) FindByUserAndEvent(_ context.Context, userID, eventID uint) (domain.Review, error) {
	for _, review := range r.reviews {
		if review.UserID == userID && review.EventID == eventID {
			return review, nil
		}
	}

	return domain.Review{}, ErrReviewNotFound
}

func (r *fakeReviewRepo) FindByEvent(_ context.Context, eventID uint, _, _ int) ([]domain.Review, int64, error) {
	var reviews []domain.Review
	for _, review := range r.reviews {
		if review.EventID == eventID {
			reviews = append(reviews, review)
		}
	}

	return reviews, int64(len(reviews)), nil
}

func (r *fakeReviewRepo) FindByHost(_ context.Context, hostID uint, _, _ int) ([]domain.Review, int64, error) {
	var reviews []domain.Review
	for _, review := range r.reviews {
		if review.HostID == hostID {
			reviews = append(reviews, review)
		}
	}

	return reviews, int64(len(reviews)), nil
}

func (r *fakeReviewRepo) RatingsByHost(_ context.Context, hostID uint) ([]int, error) {
	var ratings []int
	for _, review := range r.reviews {
		if review.HostID == hostID {
			ratings = append(ratings, review.Rating)
		}
	}

	return ratings, nil
}

func (r *fakeReviewRepo) Update(_ context.Context, review domain.Review) (domain.Review, error) {
	if _, ok := r.reviews[review.ID]; !ok {
		return domain.Review{}, ErrReviewNotFound
	}
	r.reviews[review.ID] = review

	return review, nil
}

func (r *fakeReviewRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.reviews[id]; !ok {
		return ErrReviewNotFound
	}
	delete(r.reviews, id)

	return nil
}

type fakeRatingRepo struct {
	average map[uint]float64
	total   map[uint]int
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{
		average: make(map[uint]float64),
		total:   make(map[uint]int),
	}
}

func (r *fakeRatingRepo) UpdateRatingAggregate(_ context.Context, hostID uint, average float64, total int) error {
	r.average[hostID] = average
	r.total[hostID] = total

	return nil
}

func newTestReviewService(attendees ...uint) (*ReviewService, *fakeReviewRepo, *fakeRatingRepo) {
	event := openEvent()
	event.Status = domain.EventStatusCompleted
	event.Date = testNow.Add(-24 * time.Hour)
	for _, id := range attendees {
		event.Participants = append(event.Participants, domain.User{ID: id})
	}
	event.CurrentParticipants = len(event.Participants)

	repo := newFakeReviewRepo()
	ratings := newFakeRatingRepo()
	svc := NewReviewService(repo, newFakeEventRepo(event), ratings)

	return svc, repo, ratings
}

func TestCreateReview(t *testing.T) {
	t.Run("participant reviews and the aggregate updates", func(t *testing.T) {
		svc, _, ratings := newTestReviewService(20)

		review, err := svc.CreateReview(context.Background(), 20, 1, 5, "great host")

		require.NoError(t, err)
		assert.Equal(t, uint(10), review.HostID)
		assert.Equal(t, 5, review.Rating)
		assert.Equal(t, 5.0, ratings.average[10])
		assert.Equal(t, 1, ratings.total[10])
	})

	t.Run("aggregate is the rounded mean", func(t *testing.T) {
		svc, _, ratings := newTestReviewService(20, 21, 22)

		for user, rating := range map[uint]uint{20: 4, 21: 5, 22: 3} {
			_, err := svc.CreateReview(context.Background(), user, 1, rating, "ok")
			require.NoError(t, err)
		}

		assert.Equal(t, 4.0, ratings.average[10])
		assert.Equal(t, 3, ratings.total[10])
	})

	t.Run("non participant is rejected", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		_, err := svc.CreateReview(context.Background(), 99, 1, 5, "never attended")

		assert.ErrorIs(t, err, ErrReviewNotAttended)
	})

	t.Run("host cannot review their own event", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		_, err := svc.CreateReview(context.Background(), 10, 1, 5, "loved my own event")

		assert.ErrorIs(t, err, ErrReviewOwnEvent)
	})

	t.Run("one review per user per event", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		_, err := svc.CreateReview(context.Background(), 20, 1, 5, "first")
		require.NoError(t, err)

		_, err = svc.CreateReview(context.Background(), 20, 1, 4, "second")

		assert.ErrorIs(t, err, ErrReviewExists)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		_, err := svc.CreateReview(context.Background(), 20, 42, 5, "where")

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestUpdateReview(t *testing.T) {
	t.Run("author edits and the aggregate follows", func(t *testing.T) {
		svc, _, ratings := newTestReviewService(20)

		review, err := svc.CreateReview(context.Background(), 20, 1, 5, "great")
		require.NoError(t, err)

		updated, err := svc.UpdateReview(context.Background(), review.ID, 20, domain.RoleUser, 3, "changed my mind")

		require.NoError(t, err)
		assert.Equal(t, 3, updated.Rating)
		assert.Equal(t, 3.0, ratings.average[10])
	})

	t.Run("non author is rejected", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		review, err := svc.CreateReview(context.Background(), 20, 1, 5, "great")
		require.NoError(t, err)

		_, err = svc.UpdateReview(context.Background(), review.ID, 99, domain.RoleUser, 1, "vandalism")

		assert.ErrorIs(t, err, ErrNotReviewAuthor)
	})

	t.Run("admin may moderate", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		review, err := svc.CreateReview(context.Background(), 20, 1, 5, "great")
		require.NoError(t, err)

		_, err = svc.UpdateReview(context.Background(), review.ID, 99, domain.RoleAdmin, 5, "moderated")

		assert.NoError(t, err)
	})
}

func TestDeleteReview(t *testing.T) {
	t.Run("delete recomputes the aggregate", func(t *testing.T) {
		svc, repo, ratings := newTestReviewService(20, 21)

		first, err := svc.CreateReview(context.Background(), 20, 1, 5, "great")
		require.NoError(t, err)
		_, err = svc.CreateReview(context.Background(), 21, 1, 3, "fine")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteReview(context.Background(), first.ID, 20, domain.RoleUser))

		assert.Len(t, repo.reviews, 1)
		assert.Equal(t, 3.0, ratings.average[10])
		assert.Equal(t, 1, ratings.total[10])
	})

	t.Run("deleting the last review resets the aggregate", func(t *testing.T) {
		svc, _, ratings := newTestReviewService(20)

		review, err := svc.CreateReview(context.Background(), 20, 1, 5, "great")
		require.NoError(t, err)

		require.NoError(t, svc.DeleteReview(context.Background(), review.ID, 20, domain.RoleUser))

		assert.Equal(t, 0.0, ratings.average[10])
		assert.Equal(t, 0, ratings.total[10])
	})

	t.Run("non author is rejected", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		review, err := svc.CreateReview(context.Background(), 20, 1, 5, "great")
		require.NoError(t, err)

		err = svc.DeleteReview(context.Background(), review.ID, 99, domain.RoleUser)

		assert.ErrorIs(t, err, ErrNotReviewAuthor)
	})
}

func TestEventReviews(t *testing.T) {
	t.Run("unknown event is reported", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		_, _, err := svc.EventReviews(context.Background(), 42, 0, 20)

		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("lists the event's reviews", func(t *testing.T) {
		svc, _, _ := newTestReviewService(20)

		_, err := svc.CreateReview(context.Background(), 20, 1, 5, "great")
		require.NoError(t, err)

		reviews, total, err := svc.EventReviews(context.Background(), 1, 0, 20)

		require.NoError(t, err)
		assert.Len(t, reviews, 1)
		assert.Equal(t, int64(1), total)
	})
}

func TestMyReview(t *testing.T) {
	svc, _, _ := newTestReviewService(20)

	_, err := svc.MyReview(context.Background(), 20, 1)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	created, err := svc.CreateReview(context.Background(), 20, 1, 4, "nice")
	require.NoError(t, err)

	got, err := svc.MyReview(context.Background(), 20, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}
