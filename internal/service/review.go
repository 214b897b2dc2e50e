package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository"
)

var (
	ErrReviewNotFound    = repository.ErrReviewNotFound
	ErrReviewExists      = repository.ErrReviewExists
	ErrReviewNotAttended = errors.New("only participants can review an event")
	ErrReviewOwnEvent    = errors.New("hosts cannot review their own event")
	ErrNotReviewAuthor   = errors.New("not the author of this review")
)

type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) (domain.Review, error)
	FindByID(ctx context.Context, id uint) (domain.Review, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID uint) (domain.Review, error)
	FindByEvent(ctx context.Context, eventID uint, offset, limit int) ([]domain.Review, int64, error)
	FindByHost(ctx context.Context, hostID uint, offset, limit int) ([]domain.Review, int64, error)
	RatingsByHost(ctx context.Context, hostID uint) ([]int, error)
	Update(ctx context.Context, review domain.Review) (domain.Review, error)
	Delete(ctx context.Context, id uint) error
}

type ReviewEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	IsParticipant(ctx context.Context, eventID, userID uint) (bool, error)
}

type ReviewUserRepository interface {
	UpdateRatingAggregate(ctx context.Context, hostID uint, average float64, total int) error
}

type ReviewService struct {
	repo      ReviewRepository
	eventRepo ReviewEventRepository
	userRepo  ReviewUserRepository
}

func NewReviewService(repo ReviewRepository, eventRepo ReviewEventRepository, userRepo ReviewUserRepository) *ReviewService {
	return &ReviewService{
		repo:      repo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
	}
}

// CreateReview records one review per user per event. Only participants
// may review, hosts never review themselves, and the host's rating
// aggregate is recomputed in the same operation.
func (s *ReviewService) CreateReview(ctx context.Context, userID, eventID, rating uint, comment string) (domain.Review, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return domain.Review{}, err
	}

	if event.HostID == userID {
		return domain.Review{}, ErrReviewOwnEvent
	}

	attended, err := s.eventRepo.IsParticipant(ctx, eventID, userID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("s.eventRepo.IsParticipant -> %w", err)
	}
	if !attended {
		return domain.Review{}, ErrReviewNotAttended
	}

	review, err := s.repo.Create(ctx, domain.Review{
		UserID:  userID,
		HostID:  event.HostID,
		EventID: eventID,
		Rating:  int(rating),
		Comment: comment,
	})
	if err != nil {
		return domain.Review{}, err
	}

	if err := s.recomputeHostRating(ctx, event.HostID); err != nil {
		return domain.Review{}, err
	}

	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, actorID uint, actorRole string, rating uint, comment string) (domain.Review, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}

	if review.UserID != actorID && actorRole != domain.RoleAdmin {
		return domain.Review{}, ErrNotReviewAuthor
	}

	review.Rating = int(rating)
	review.Comment = comment
	review.UpdatedAt = time.Now()

	updated, err := s.repo.Update(ctx, review)
	if err != nil {
		return domain.Review{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if err := s.recomputeHostRating(ctx, review.HostID); err != nil {
		return domain.Review{}, err
	}

	return updated, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, actorID uint, actorRole string) error {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}

	if review.UserID != actorID && actorRole != domain.RoleAdmin {
		return ErrNotReviewAuthor
	}

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return s.recomputeHostRating(ctx, review.HostID)
}

func (s *ReviewService) EventReviews(ctx context.Context, eventID uint, offset, limit int) ([]domain.Review, int64, error) {
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, 0, err
	}

	return s.repo.FindByEvent(ctx, eventID, offset, limit)
}

func (s *ReviewService) HostReviews(ctx context.Context, hostID uint, offset, limit int) ([]domain.Review, int64, error) {
	return s.repo.FindByHost(ctx, hostID, offset, limit)
}

// MyReview returns the caller's review of the event, if any.
func (s *ReviewService) MyReview(ctx context.Context, userID, eventID uint) (domain.Review, error) {
	return s.repo.FindByUserAndEvent(ctx, userID, eventID)
}

// recomputeHostRating recalculates the host's aggregate from the full
// review set rather than adjusting incrementally, so deletes and edits
// cannot drift the average.
func (s *ReviewService) recomputeHostRating(ctx context.Context, hostID uint) error {
	ratings, err := s.repo.RatingsByHost(ctx, hostID)
	if err != nil {
		return fmt.Errorf("s.repo.RatingsByHost -> %w", err)
	}

	average, total := domain.AggregateRatings(ratings)

	if err := s.userRepo.UpdateRatingAggregate(ctx, hostID, average, total); err != nil {
		return fmt.Errorf("s.userRepo.UpdateRatingAggregate -> %w", err)
	}

	return nil
}
