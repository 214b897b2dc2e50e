package repository

import (
	"context"

	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserRepository struct {
	dao *dao.UserDAO
}

func NewUserRepository(d *dao.UserDAO) *UserRepository {
	return &UserRepository{
		dao: d,
	}
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	user := domain.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Password:      u.Password,
		IsGoogleUser:  u.IsGoogleUser,
		Role:          u.Role,
		Avatar:        u.Avatar,
		Bio:           u.Bio,
		Location:      u.Location,
		Interests:     u.Interests,
		IsVerified:    u.IsVerified,
		AverageRating: u.AverageRating,
		TotalReviews:  u.TotalReviews,
		EventsHosted:  u.EventsHosted,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}

	if u.GoogleID != nil {
		user.GoogleID = *u.GoogleID
	}

	if u.HostRequest.Requested {
		user.HostRequest = &domain.HostRequest{
			Requested:       u.HostRequest.Requested,
			Status:          u.HostRequest.Status,
			Reason:          u.HostRequest.Reason,
			RequestedAt:     u.HostRequest.RequestedAt,
			ApprovedAt:      u.HostRequest.ApprovedAt,
			ApprovedBy:      u.HostRequest.ApprovedBy,
			RejectedAt:      u.HostRequest.RejectedAt,
			RejectedBy:      u.HostRequest.RejectedBy,
			RejectionReason: u.HostRequest.RejectionReason,
		}
	}

	return user
}

func (r *UserRepository) domainToDao(u domain.User) dao.User {
	user := dao.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Password:      u.Password,
		IsGoogleUser:  u.IsGoogleUser,
		Role:          u.Role,
		Avatar:        u.Avatar,
		Bio:           u.Bio,
		Location:      u.Location,
		Interests:     u.Interests,
		IsVerified:    u.IsVerified,
		AverageRating: u.AverageRating,
		TotalReviews:  u.TotalReviews,
		EventsHosted:  u.EventsHosted,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}

	if u.GoogleID != "" {
		googleID := u.GoogleID
		user.GoogleID = &googleID
	}

	if u.HostRequest != nil {
		user.HostRequest = dao.HostRequest{
			Requested:       u.HostRequest.Requested,
			Status:          u.HostRequest.Status,
			Reason:          u.HostRequest.Reason,
			RequestedAt:     u.HostRequest.RequestedAt,
			ApprovedAt:      u.HostRequest.ApprovedAt,
			ApprovedBy:      u.HostRequest.ApprovedBy,
			RejectedAt:      u.HostRequest.RejectedAt,
			RejectedBy:      u.HostRequest.RejectedBy,
			RejectionReason: u.HostRequest.RejectionReason,
		}
	}

	return user
}

func (r *UserRepository) daosToDomain(users []dao.User) []domain.User {
	result := make([]domain.User, len(users))
	for i, u := range users {
		result[i] = r.daoToDomain(u)
	}

	return result
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(user))
	if err != nil {
		return domain.User{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	return r.daoToDomain(user), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}

	return r.daoToDomain(user), nil
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (domain.User, error) {
	user, err := r.dao.FindByGoogleID(ctx, googleID)
	if err != nil {
		return domain.User{}, err
	}

	return r.daoToDomain(user), nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(user))
	if err != nil {
		return domain.User{}, err
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.dao.Delete(ctx, id)
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	users, total, err := r.dao.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	return r.daosToDomain(users), total, nil
}

func (r *UserRepository) Search(ctx context.Context, query, role, location string, offset, limit int) ([]domain.User, int64, error) {
	users, total, err := r.dao.Search(ctx, query, role, location, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	return r.daosToDomain(users), total, nil
}

func (r *UserRepository) Stats(ctx context.Context) (domain.UserStats, error) {
	stats, err := r.dao.Stats(ctx)
	if err != nil {
		return domain.UserStats{}, err
	}

	return domain.UserStats{
		TotalUsers:    stats.TotalUsers,
		TotalHosts:    stats.TotalHosts,
		TotalAdmins:   stats.TotalAdmins,
		VerifiedUsers: stats.VerifiedUsers,
		NewUsers:      stats.NewUsers,
		RegularUsers:  stats.TotalUsers - stats.TotalHosts - stats.TotalAdmins,
	}, nil
}

func (r *UserRepository) AdjustEventsHosted(ctx context.Context, userID uint, delta int) error {
	return r.dao.AdjustEventsHosted(ctx, userID, delta)
}

func (r *UserRepository) UpdateRatingAggregate(ctx context.Context, userID uint, average float64, total int) error {
	return r.dao.UpdateRatingAggregate(ctx, userID, average, total)
}

func (r *UserRepository) FindHostRequests(ctx context.Context, status, search string) ([]domain.User, error) {
	users, err := r.dao.FindHostRequests(ctx, status, search)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(users), nil
}

func (r *UserRepository) HostRequestStats(ctx context.Context) (domain.HostRequestStats, error) {
	stats, err := r.dao.HostRequestStats(ctx)
	if err != nil {
		return domain.HostRequestStats{}, err
	}

	return domain.HostRequestStats{
		Total:    stats.Total,
		Pending:  stats.Pending,
		Approved: stats.Approved,
		Rejected: stats.Rejected,
		Recent:   stats.Recent,
	}, nil
}

func (r *UserRepository) CountEventsByHost(ctx context.Context, hostID uint) (int64, error) {
	return r.dao.CountEventsByHost(ctx, hostID)
}
