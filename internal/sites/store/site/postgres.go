package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"zorgsites/internal/sites/models"
	"zorgsites/pkg/platform/sentinel"
)

// PostgresStore persists sites.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, site *models.Site) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sites (id, owner_id, name, domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		site.ID, site.OwnerID, site.Name, site.Domain, site.CreatedAt, site.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert site: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	var site models.Site
	err := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, domain, created_at, updated_at
		FROM sites
		WHERE id = $1`, id).
		Scan(&site.ID, &site.OwnerID, &site.Name, &site.Domain, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find site: %w", err)
	}
	return &site, nil
}

func (s *PostgresStore) SetDomain(ctx context.Context, id uuid.UUID, domain string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sites SET domain = $2, updated_at = $3 WHERE id = $1`,
		id, domain, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set site domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClearDomain(ctx context.Context, id uuid.UUID) error {
	return s.SetDomain(ctx, id, "")
}
