package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"zorgsites/internal/domains/models"
	"zorgsites/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists domain records. The single-active invariants are
// enforced by partial unique indexes on (site_id) and (domain) over
// non-terminal statuses, so Create is atomic without an explicit lock.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const recordColumns = `id, site_id, domain, tld, acquisition_mode, status,
	price_cents, cost_cents, dns_configured, last_error,
	registered_at, expires_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, rec *models.DomainRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO domain_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.SiteID, rec.Domain, rec.TLD, rec.AcquisitionMode, rec.Status,
		rec.PriceCents, rec.CostCents, rec.DNSConfigured, rec.LastError,
		rec.RegisteredAt, rec.ExpiresAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert domain record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, rec *models.DomainRecord) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE domain_records
		SET status = $2, price_cents = $3, cost_cents = $4, dns_configured = $5,
		    last_error = $6, registered_at = $7, expires_at = $8, updated_at = $9
		WHERE id = $1`,
		rec.ID, rec.Status, rec.PriceCents, rec.CostCents, rec.DNSConfigured,
		rec.LastError, rec.RegisteredAt, rec.ExpiresAt, rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update domain record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.DomainRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM domain_records
		WHERE id = $1`, id)
	return scanRecord(row)
}

func (s *PostgresStore) FindActiveBySite(ctx context.Context, siteID uuid.UUID) (*models.DomainRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM domain_records
		WHERE site_id = $1 AND status NOT IN ('failed', 'disconnected')`, siteID)
	return scanRecord(row)
}

func (s *PostgresStore) FindActiveByDomain(ctx context.Context, domain string) (*models.DomainRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM domain_records
		WHERE domain = $1 AND status NOT IN ('failed', 'disconnected')`, domain)
	return scanRecord(row)
}

func (s *PostgresStore) ListBySite(ctx context.Context, siteID uuid.UUID) ([]*models.DomainRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM domain_records
		WHERE site_id = $1
		ORDER BY created_at`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list domain records: %w", err)
	}
	defer rows.Close()

	var out []*models.DomainRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*models.DomainRecord, error) {
	var rec models.DomainRecord
	err := row.Scan(
		&rec.ID, &rec.SiteID, &rec.Domain, &rec.TLD, &rec.AcquisitionMode, &rec.Status,
		&rec.PriceCents, &rec.CostCents, &rec.DNSConfigured, &rec.LastError,
		&rec.RegisteredAt, &rec.ExpiresAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain record: %w", err)
	}
	return &rec, nil
}
