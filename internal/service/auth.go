package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/buddyshare/buddyshare-api/internal/domain"
	"github.com/buddyshare/buddyshare-api/internal/repository"
)

var (
	ErrUserEmailExists = repository.ErrUserEmailExists
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrWrongPassword   = errors.New("wrong password")

	// ErrInvalidGoogleToken marks an ID token that failed verification.
	ErrInvalidGoogleToken = errors.New("invalid google id token")
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
}

// GoogleClaims is the identity asserted by a verified Google ID token.
type GoogleClaims struct {
	Subject string
	Email   string
	Name    string
	Avatar  string
}

// GoogleTokenVerifier checks an ID token's signature and audience and
// returns the verified claims. Implementations must return
// ErrInvalidGoogleToken (wrapped or bare) when the token does not verify.
type GoogleTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleClaims, error)
}

type AuthService struct {
	repo     AuthUserRepository
	verifier GoogleTokenVerifier
}

func NewAuthService(repo AuthUserRepository, verifier GoogleTokenVerifier) *AuthService {
	return &AuthService{
		repo:     repo,
		verifier: verifier,
	}
}

func (s *AuthService) Signup(ctx context.Context, user domain.User) (domain.User, error) {
	if err := s.checkEmailExists(ctx, user.Email); err != nil {
		return domain.User{}, err
	}

	hash, err := hashPassword(user.Password)
	if err != nil {
		return domain.User{}, err
	}
	user.Password = hash

	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if user.IsGoogleUser && user.Password == "" {
		return domain.User{}, ErrWrongPassword
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

// GoogleSignIn verifies the ID token, then resolves the user by the
// verified OAuth subject id, falling back to email so an existing local
// account gets linked and saved, and registers a fresh federated user
// otherwise. Only verified claims are trusted; nothing client-supplied
// reaches the lookup.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (domain.User, error) {
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.FindByGoogleID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("s.repo.FindByGoogleID -> %w", err)
	}

	user, err = s.repo.FindByEmail(ctx, claims.Email)
	if err == nil {
		user.GoogleID = claims.Subject
		user.IsGoogleUser = true
		user.IsVerified = true
		if user.Avatar == "" {
			user.Avatar = claims.Avatar
		}

		linked, uerr := s.repo.Update(ctx, user)
		if uerr != nil {
			return domain.User{}, fmt.Errorf("s.repo.Update -> %w", uerr)
		}

		return linked, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	created, err := s.repo.Create(ctx, domain.User{
		Name:         claims.Name,
		Email:        claims.Email,
		GoogleID:     claims.Subject,
		IsGoogleUser: true,
		IsVerified:   true,
		Avatar:       claims.Avatar,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) checkEmailExists(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrUserEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
