package service

import (
	"context"

	"zenith/internal/apperror"
	"zenith/internal/dto"
	"zenith/internal/model"
	"zenith/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService manages the Users collection. Credentials are stored and
// compared in plaintext; the store file is local and single-tenant.
type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*model.User, error)
	// SeedDefaultUser creates the initial account when the collection is
	// empty, so a fresh install can log in.
	SeedDefaultUser(ctx context.Context, email, password string) error
}

type authService struct {
	repo repository.UserRepository
}

func NewAuthService(repo repository.UserRepository) AuthService {
	return &authService{repo: repo}
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*model.User, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.ErrEmailTaken
	}
	u := &model.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Password: req.Password,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return stripPassword(u), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*model.User, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil || u.Password != req.Password {
		return nil, apperror.ErrInvalidCredentials
	}
	return stripPassword(u), nil
}

func (s *authService) SeedDefaultUser(ctx context.Context, email, password string) error {
	users, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}
	u := &model.User{ID: "default-user-01", Email: email, Password: password}
	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("seeded default user")
	return nil
}

// stripPassword returns a session-safe copy of the account.
func stripPassword(u *model.User) *model.User {
	return &model.User{ID: u.ID, Email: u.Email}
}
