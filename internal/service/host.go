package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buddyshare/buddyshare-api/internal/domain"
)

var (
	ErrAlreadyHost         = errors.New("already a host or admin")
	ErrNoHostRequest       = errors.New("no host request found")
	ErrHostRequestResolved = errors.New("host request already resolved")
)

type HostUserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	FindHostRequests(ctx context.Context, status, search string) ([]domain.User, error)
	HostRequestStats(ctx context.Context) (domain.HostRequestStats, error)
}

type HostService struct {
	repo HostUserRepository
}

func NewHostService(repo HostUserRepository) *HostService {
	return &HostService{
		repo: repo,
	}
}

func (s *HostService) RequestHost(ctx context.Context, userID uint, reason string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if user.IsHost() {
		return domain.User{}, ErrAlreadyHost
	}

	now := time.Now()
	user.HostRequest = &domain.HostRequest{
		Requested:   true,
		Status:      domain.HostRequestPending,
		Reason:      reason,
		RequestedAt: &now,
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *HostService) ApproveRequest(ctx context.Context, userID, adminID uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if user.HostRequest == nil || !user.HostRequest.Requested {
		return domain.User{}, ErrNoHostRequest
	}
	if user.Role == domain.RoleHost {
		return domain.User{}, ErrAlreadyHost
	}

	now := time.Now()
	user.Role = domain.RoleHost
	user.HostRequest.Status = domain.HostRequestApproved
	user.HostRequest.ApprovedAt = &now
	user.HostRequest.ApprovedBy = adminID

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *HostService) RejectRequest(ctx context.Context, userID, adminID uint, reason string) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if user.HostRequest == nil || !user.HostRequest.Requested {
		return domain.User{}, ErrNoHostRequest
	}
	if user.HostRequest.Status != domain.HostRequestPending {
		return domain.User{}, ErrHostRequestResolved
	}

	now := time.Now()
	user.HostRequest.Status = domain.HostRequestRejected
	user.HostRequest.RejectedAt = &now
	user.HostRequest.RejectedBy = adminID
	user.HostRequest.RejectionReason = reason

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *HostService) HostStatus(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *HostService) ListRequests(ctx context.Context, status, search string) ([]domain.User, error) {
	users, err := s.repo.FindHostRequests(ctx, status, search)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindHostRequests -> %w", err)
	}

	return users, nil
}

func (s *HostService) RequestDetails(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if user.HostRequest == nil || !user.HostRequest.Requested {
		return domain.User{}, ErrNoHostRequest
	}

	return user, nil
}

func (s *HostService) RequestStats(ctx context.Context) (domain.HostRequestStats, error) {
	stats, err := s.repo.HostRequestStats(ctx)
	if err != nil {
		return domain.HostRequestStats{}, fmt.Errorf("s.repo.HostRequestStats -> %w", err)
	}

	return stats, nil
}
