package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Togather-Foundation/eventos/internal/domain/licenses"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LicenseRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ licenses.Repository = (*LicenseRepository)(nil)

func (r *LicenseRepository) List(ctx context.Context) (items []licenses.License, err error) {
	defer observe("licenses.list", time.Now(), &err)

	rows, err := pick(r.pool, r.tx).Query(ctx, `SELECT code, description FROM license_types ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	items = []licenses.License{}
	for rows.Next() {
		var l licenses.License
		if err := rows.Scan(&l.Code, &l.Description); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate licenses: %w", err)
	}
	return items, nil
}

func (r *LicenseRepository) SeedIfEmpty(ctx context.Context, defaults []licenses.License) (inserted int, err error) {
	defer observe("licenses.seed", time.Now(), &err)

	codes := make([]string, 0, len(defaults))
	descriptions := make([]string, 0, len(defaults))
	for _, l := range defaults {
		codes = append(codes, l.Code)
		descriptions = append(descriptions, l.Description)
	}

	tag, err := pick(r.pool, r.tx).Exec(ctx, `
INSERT INTO license_types (code, description)
SELECT v.code, v.description
  FROM unnest($1::text[], $2::text[]) AS v(code, description)
 WHERE NOT EXISTS (SELECT 1 FROM license_types)
ON CONFLICT (code) DO NOTHING`, codes, descriptions)
	if err != nil {
		return 0, fmt.Errorf("seed licenses: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
