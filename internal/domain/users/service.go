package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
	"github.com/Togather-Foundation/eventos/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost factor for bcrypt password hashing
const BcryptCost = 12

// RegisterParams contains the fields accepted when creating an account
type RegisterParams struct {
	Username  string `json:"username" validate:"required,max=50"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Age       *int   `json:"age" validate:"omitempty,min=0,max=150"`
}

// LoginParams contains the credentials presented at login
type LoginParams struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service handles registration, authentication and account lifecycle
type Service struct {
	repo   Repository
	cost   int
	logger zerolog.Logger
}

// NewService creates a new user service instance
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		cost:   BcryptCost,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// Register validates params, hashes the password and stores the user
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.FirstName = strings.TrimSpace(params.FirstName)
	params.LastName = strings.TrimSpace(params.LastName)
	params.Password = strings.TrimSpace(params.Password)
	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUsername(ctx, params.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.ValidationError{Field: "password", Message: "must be at most 72 bytes"}
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Username:     params.Username,
		PasswordHash: string(hash),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Age:          params.Age,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Authenticate checks the username and password and returns the matching user
func (s *Service) Authenticate(ctx context.Context, params LoginParams) (*User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Password = strings.TrimSpace(params.Password)
	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, params.Username)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user with the given id
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Delete removes the user and, through cascading keys, everything they own
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
