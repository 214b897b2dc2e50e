package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/buddyshare/buddyshare-api/internal/domain"
)

type fakeUserRepo struct {
	users  map[uint]domain.User
	nextID uint
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:  make(map[uint]domain.User),
		nextID: 1,
	}
	for _, u := range users {
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
		r.users[u.ID] = u
	}

	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.User{}, ErrUserEmailExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return domain.User{}, ErrUserNotFound
}

func (r *fakeUserRepo) FindByGoogleID(_ context.Context, googleID string) (domain.User, error) {
	for _, u := range r.users {
		if u.GoogleID == googleID {
			return u, nil
		}
	}

	return domain.User{}, ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return domain.User{}, ErrUserNotFound
	}
	r.users[user.ID] = user

	return user, nil
}

func (r *fakeUserRepo) FindHostRequests(_ context.Context, status, _ string) ([]domain.User, error) {
	var users []domain.User
	for _, u := range r.users {
		if u.HostRequest == nil || !u.HostRequest.Requested {
			continue
		}
		if status != "" && u.HostRequest.Status != status {
			continue
		}
		users = append(users, u)
	}

	return users, nil
}

func (r *fakeUserRepo) HostRequestStats(_ context.Context) (domain.HostRequestStats, error) {
	var stats domain.HostRequestStats
	for _, u := range r.users {
		if u.HostRequest == nil || !u.HostRequest.Requested {
			continue
		}
		stats.Total++
		switch u.HostRequest.Status {
		case domain.HostRequestPending:
			stats.Pending++
		case domain.HostRequestApproved:
			stats.Approved++
		case domain.HostRequestRejected:
			stats.Rejected++
		}
	}

	return stats, nil
}

type fakeGoogleVerifier struct {
	claims GoogleClaims
	err    error
}

func (v *fakeGoogleVerifier) Verify(_ context.Context, _ string) (GoogleClaims, error) {
	if v.err != nil {
		return GoogleClaims{}, v.err
	}

	return v.claims, nil
}

func newTestAuthService(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, &fakeGoogleVerifier{err: ErrInvalidGoogleToken})
}

func TestSignup(t *testing.T) {
	t.Run("hashes the password and defaults the role", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := newTestAuthService(repo)

		created, err := svc.Signup(context.Background(), domain.User{
			Name:     "Ana",
			Email:    "ana@example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, created.Role)
		assert.NotEqual(t, "secret123", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123")))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{ID: 1, Email: "ana@example.com"})
		svc := newTestAuthService(repo)

		_, err := svc.Signup(context.Background(), domain.User{Email: "ana@example.com", Password: "secret123"})

		assert.ErrorIs(t, err, ErrUserEmailExists)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newFakeUserRepo(domain.User{ID: 1, Email: "ana@example.com", Password: string(hash)})
	svc := newTestAuthService(repo)

	t.Run("right password", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "ana@example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ana@example.com", "not-it")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "secret123")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("federated account without a password cannot password login", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{ID: 2, Email: "g@example.com", GoogleID: "goog-2", IsGoogleUser: true})
		svc := newTestAuthService(repo)

		_, err := svc.Login(context.Background(), "g@example.com", "anything")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})
}

func TestGoogleSignIn(t *testing.T) {
	t.Run("rejects a token that does not verify", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin})
		svc := NewAuthService(repo, &fakeGoogleVerifier{err: ErrInvalidGoogleToken})

		_, err := svc.GoogleSignIn(context.Background(), "forged-token")

		assert.ErrorIs(t, err, ErrInvalidGoogleToken)
	})

	t.Run("returns the existing federated user", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{ID: 1, Email: "g@example.com", GoogleID: "goog-1", IsGoogleUser: true})
		svc := NewAuthService(repo, &fakeGoogleVerifier{
			claims: GoogleClaims{Subject: "goog-1", Email: "g@example.com", Name: "Gina"},
		})

		user, err := svc.GoogleSignIn(context.Background(), "token")

		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("links and saves an existing local account by email", func(t *testing.T) {
		repo := newFakeUserRepo(domain.User{ID: 1, Email: "ana@example.com"})
		svc := NewAuthService(repo, &fakeGoogleVerifier{
			claims: GoogleClaims{Subject: "goog-9", Email: "ana@example.com", Name: "Ana"},
		})

		user, err := svc.GoogleSignIn(context.Background(), "token")

		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
		assert.Equal(t, "goog-9", user.GoogleID)
		assert.True(t, user.IsGoogleUser)
		assert.Equal(t, "goog-9", repo.users[1].GoogleID)
		assert.True(t, repo.users[1].IsGoogleUser)
	})

	t.Run("registers a fresh verified user", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo, &fakeGoogleVerifier{
			claims: GoogleClaims{Subject: "goog-1", Email: "new@example.com", Name: "Nia", Avatar: "https://cdn.example.com/a.png"},
		})

		user, err := svc.GoogleSignIn(context.Background(), "token")

		require.NoError(t, err)
		assert.True(t, user.IsGoogleUser)
		assert.True(t, user.IsVerified)
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.Equal(t, "goog-1", user.GoogleID)
	})
}
