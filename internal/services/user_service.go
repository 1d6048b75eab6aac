package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/reliefshare/internal/api/validate"
	"github.com/baharkarakas/reliefshare/internal/auth"
	"github.com/baharkarakas/reliefshare/internal/metrics"
	"github.com/baharkarakas/reliefshare/internal/models"
	repo "github.com/baharkarakas/reliefshare/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	r repo.Users
}

func NewUserService(r repo.Users) *UserService { return &UserService{r: r} }

type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	in := Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := validate.Struct(in); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.User{}, validate.Errs{{Field: "password", Msg: "must be at most 72 bytes"}}
	}
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.r.Create(ctx, in.Username, hash)
	if errors.Is(err, repo.ErrDuplicate) {
		return models.User{}, fmt.Errorf("username already exists: %w", ErrConflict)
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Authenticate returns ErrInvalidCredentials for both an unknown username and
// a wrong password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.r.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repo.ErrNotFound) {
		auth.BurnCompare(password)
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return models.User{}, ErrInvalidCredentials
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (models.User, error) {
	u, err := s.r.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	return u, err
}
