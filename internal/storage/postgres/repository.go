package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository hands out the per-domain repositories sharing one pool.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Users() *UserRepository {
	return &UserRepository{pool: r.pool}
}

func (r *Repository) Events() *EventRepository {
	return &EventRepository{pool: r.pool}
}

func (r *Repository) RSVPs() *RSVPRepository {
	return &RSVPRepository{pool: r.pool}
}

func (r *Repository) Comments() *CommentRepository {
	return &CommentRepository{pool: r.pool}
}

func (r *Repository) Reports() *ReportRepository {
	return &ReportRepository{pool: r.pool}
}

func (r *Repository) Licenses() *LicenseRepository {
	return &LicenseRepository{pool: r.pool}
}

func (r *Repository) Notifications() *NotificationRepository {
	return &NotificationRepository{pool: r.pool}
}

// Ping checks that a pooled connection can reach the database.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// SchemaState reads the version golang-migrate recorded. Version 0 means no
// migration has been applied.
func (r *Repository) SchemaState(ctx context.Context) (version int64, dirty bool, err error) {
	err = r.pool.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema_migrations: %w", err)
	}
	return version, dirty, nil
}
