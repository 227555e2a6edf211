package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ users.Repository = (*UserRepository)(nil)

const userColumns = `id, username, password_hash, first_name, last_name, age, created_at`

func scanUser(row pgx.Row) (*users.User, error) {
	var u users.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Age, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (user *users.User, err error) {
	defer observe("users.create", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO users (username, password_hash, first_name, last_name, age)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+userColumns,
		params.Username, params.PasswordHash, params.FirstName, params.LastName, params.Age,
	)
	user, err = scanUser(row)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return nil, users.ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (user *users.User, err error) {
	defer observe("users.get_by_id", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (user *users.User, err error) {
	defer observe("users.get_by_username", time.Now(), &err)

	row := pick(r.pool, r.tx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (err error) {
	defer observe("users.delete", time.Now(), &err)

	tag, err := pick(r.pool, r.tx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}
