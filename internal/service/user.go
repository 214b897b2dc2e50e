package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/buddyshare/buddyshare-api/internal/domain"
)

var (
	ErrInvalidRole     = errors.New("invalid role")
	ErrUserHostsEvents = errors.New("user still hosts events")
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]domain.User, int64, error)
	Search(ctx context.Context, query, role, location string, offset, limit int) ([]domain.User, int64, error)
	Stats(ctx context.Context) (domain.UserStats, error)
	CountEventsByHost(ctx context.Context, hostID uint) (int64, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	users, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.List -> %w", err)
	}

	return users, total, nil
}

func (s *UserService) SearchUsers(ctx context.Context, query, role, location string, offset, limit int) ([]domain.User, int64, error) {
	users, total, err := s.repo.Search(ctx, query, role, location, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.Search -> %w", err)
	}

	return users, total, nil
}

// UpdateProfile applies only the caller-editable profile fields, leaving
// role, verification and the derived rating aggregate untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, name, bio, location, avatar string, interests []string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if name != "" {
		user.Name = name
	}
	if bio != "" {
		user.Bio = bio
	}
	if location != "" {
		user.Location = location
	}
	if avatar != "" {
		user.Avatar = avatar
	}
	if interests != nil {
		user.Interests = interests
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *UserService) UpdateRole(ctx context.Context, userID uint, role string) (domain.User, error) {
	switch role {
	case domain.RoleUser, domain.RoleHost, domain.RoleAdmin:
	default:
		return domain.User{}, ErrInvalidRole
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	user.Role = role

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteUser refuses to remove a user who still hosts events, so no event
// is left pointing at a missing host. Payments and reviews reference the
// user historically and are intentionally kept.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	hosted, err := s.repo.CountEventsByHost(ctx, userID)
	if err != nil {
		return fmt.Errorf("s.repo.CountEventsByHost -> %w", err)
	}
	if hosted > 0 {
		return ErrUserHostsEvents
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

func (s *UserService) UserStats(ctx context.Context) (domain.UserStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	return stats, nil
}
