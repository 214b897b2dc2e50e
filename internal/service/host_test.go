package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buddyshare/buddyshare-api/internal/domain"
)

func TestRequestHost(t *testing.T) {
	t.Run("records a pending request", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{ID: 1, Role: domain.RoleUser})
		svc := NewHostService(repo)

		user, err := svc.RequestHost(context.Background(), 1, "I run a hiking club")

		require.NoError(t, err)
		require.NotNil(t, user.HostRequest)
		assert.True(t, user.HostRequest.Requested)
		assert.Equal(t, domain.HostRequestPending, user.HostRequest.Status)
		assert.Equal(t, "I run a hiking club", user.HostRequest.Reason)
		assert.NotNil(t, user.HostRequest.RequestedAt)
	})

	t.Run("hosts and admins cannot re-request", func(t *testing.T) {
		repo := newFakeUserRepo(
			domain.User{ID: 1, Role: domain.RoleHost},
			domain.User{ID: 2, Role: domain.RoleAdmin},
		)
		svc := NewHostService(repo)

		_, err := svc.RequestHost(context.Background(), 1, "again")
		assert.ErrorIs(t, err, ErrAlreadyHost)

		_, err = svc.RequestHost(context.Background(), 2, "again")
		assert.ErrorIs(t, err, ErrAlreadyHost)
	})
}

func TestApproveRequest(t *testing.T) {
	t.Run("promotes the user", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			ID:   1,
			Role: domain.RoleUser,
			HostRequest: &domain.HostRequest{
				Requested: true,
				Status:    domain.HostRequestPending,
			},
		})
		svc := NewHostService(repo)

		user, err := svc.ApproveRequest(context.Background(), 1, 9)

		require.NoError(t, err)
		assert.Equal(t, domain.RoleHost, user.Role)
		assert.Equal(t, domain.HostRequestApproved, user.HostRequest.Status)
		assert.Equal(t, uint(9), user.HostRequest.ApprovedBy)
		assert.NotNil(t, user.HostRequest.ApprovedAt)
	})

	t.Run("without a request", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{ID: 1, Role: domain.RoleUser})
		svc := NewHostService(repo)

		_, err := svc.ApproveRequest(context.Background(), 1, 9)

		assert.ErrorIs(t, err, ErrNoHostRequest)
	})

	t.Run("already a host", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			ID:   1,
			Role: domain.RoleHost,
			HostRequest: &domain.HostRequest{
				Requested: true,
				Status:    domain.HostRequestApproved,
			},
		})
		svc := NewHostService(repo)

		_, err := svc.ApproveRequest(context.Background(), 1, 9)

		assert.ErrorIs(t, err, ErrAlreadyHost)
	})
}

func TestRejectRequest(t *testing.T) {
	t.Run("records the rejection", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			ID:   1,
			Role: domain.RoleUser,
			HostRequest: &domain.HostRequest{
				Requested: true,
				Status:    domain.HostRequestPending,
			},
		})
		svc := NewHostService(repo)

		user, err := svc.RejectRequest(context.Background(), 1, 9, "not enough detail")

		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.Equal(t, domain.HostRequestRejected, user.HostRequest.Status)
		assert.Equal(t, uint(9), user.HostRequest.RejectedBy)
		assert.Equal(t, "not enough detail", user.HostRequest.RejectionReason)
	})

	t.Run("resolved request cannot be rejected again", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{
			ID:   1,
			Role: domain.RoleUser,
			HostRequest: &domain.HostRequest{
				Requested: true,
				Status:    domain.HostRequestRejected,
			},
		})
		svc := NewHostService(repo)

		_, err := svc.RejectRequest(context.Background(), 1, 9, "again")

		assert.ErrorIs(t, err, ErrHostRequestResolved)
	})
}

func TestListRequests(t *testing.T) {
	repo := newFakeUserRepo(
		domain.User{ID: 1, HostRequest: &domain.HostRequest{Requested: true, Status: domain.HostRequestPending}},
		domain.User{ID: 2, HostRequest: &domain.HostRequest{Requested: true, Status: domain.HostRequestApproved}},
		domain.User{ID: 3},
	)
	svc := NewHostService(repo)

	all, err := svc.ListRequests(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListRequests(context.Background(), domain.HostRequestPending, "")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRequestStats(t *testing.T) {
	repo := newFakeUserRepo(
		domain.User{ID: 1, HostRequest: &domain.HostRequest{Requested: true, Status: domain.HostRequestPending}},
		domain.User{ID: 2, HostRequest: &domain.HostRequest{Requested: true, Status: domain.HostRequestApproved}},
		domain.User{ID: 3, HostRequest: &domain.HostRequest{Requested: true, Status: domain.HostRequestRejected}},
	)
	svc := NewHostService(repo)

	stats, err := svc.RequestStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Approved)
	assert.Equal(t, int64(1), stats.Rejected)
}
