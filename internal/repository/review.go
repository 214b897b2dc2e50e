package repository

import (
	"context"

	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository/dao"
)

var (
	ErrReviewNotFound = dao.ErrReviewNotFound
	ErrReviewExists   = dao.ErrReviewExists
)

type ReviewRepository struct {
	dao   *dao.ReviewDAO
	uRepo *UserRepository
	eRepo *EventRepository
}

func NewReviewRepository(d *dao.ReviewDAO, uRepo *UserRepository, eRepo *EventRepository) *ReviewRepository {
	return &ReviewRepository{
		dao:   d,
		uRepo: uRepo,
		eRepo: eRepo,
	}
}

func (r *ReviewRepository) daoToDomain(rev dao.Review) domain.Review {
	review := domain.Review{
		ID:        rev.ID,
		UserID:    rev.UserID,
		HostID:    rev.HostID,
		EventID:   rev.EventID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
		UpdatedAt: rev.UpdatedAt,
	}

	if rev.User.ID != 0 {
		reviewer := r.uRepo.daoToDomain(rev.User)
		review.Reviewer = &reviewer
	}
	if rev.Event.ID != 0 {
		event := r.eRepo.daoToDomain(rev.Event)
		review.Event = &event
	}

	return review
}

func (r *ReviewRepository) domainToDao(rev domain.Review) dao.Review {
	return dao.Review{
		ID:        rev.ID,
		UserID:    rev.UserID,
		HostID:    rev.HostID,
		EventID:   rev.EventID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
		UpdatedAt: rev.UpdatedAt,
	}
}

func (r *ReviewRepository) daosToDomain(reviews []dao.Review) []domain.Review {
	result := make([]domain.Review, len(reviews))
	for i, rev := range reviews {
		result[i] = r.daoToDomain(rev)
	}

	return result
}

func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) (domain.Review, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(review))
	if err != nil {
		return domain.Review{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (domain.Review, error) {
	review, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}

	return r.daoToDomain(review), nil
}

func (r *ReviewRepository) FindByUserAndEvent(ctx context.Context, userID, eventID uint) (domain.Review, error) {
	review, err := r.dao.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return domain.Review{}, err
	}

	return r.daoToDomain(review), nil
}

func (r *ReviewRepository) FindByEvent(ctx context.Context, eventID uint, offset, limit int) ([]domain.Review, int64, error) {
	reviews, total, err := r.dao.FindByEvent(ctx, eventID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	return r.daosToDomain(reviews), total, nil
}

func (r *ReviewRepository) FindByHost(ctx context.Context, hostID uint, offset, limit int) ([]domain.Review, int64, error) {
	reviews, total, err := r.dao.FindByHost(ctx, hostID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	return r.daosToDomain(reviews), total, nil
}

func (r *ReviewRepository) RatingsByHost(ctx context.Context, hostID uint) ([]int, error) {
	return r.dao.RatingsByHost(ctx, hostID)
}

func (r *ReviewRepository) Update(ctx context.Context, review domain.Review) (domain.Review, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(review))
	if err != nil {
		return domain.Review{}, err
	}

	return r.daoToDomain(updated), nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}
