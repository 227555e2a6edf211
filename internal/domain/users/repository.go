package users

import (
	"context"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/apperr"
)

var (
	ErrNotFound           = apperr.NotFound("user not found")
	ErrUsernameTaken      = apperr.Conflict("username is already taken")
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Age          *int
	CreatedAt    time.Time
}

type CreateParams struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Age          *int
}

// Repository persists users. Create returns ErrUsernameTaken when the
// username is already in use; lookups and Delete return ErrNotFound.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Delete(ctx context.Context, id int64) error
}
