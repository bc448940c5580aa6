package postgres

import (
	"context"
	"errors"

	"hirematrix-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type tenantRepo struct {
	db *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) domain.TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	query := `INSERT INTO tenants (id, name) VALUES ($1, $2) RETURNING created_at`
	return r.db.QueryRow(ctx, query, tenant.ID, tenant.Name).Scan(&tenant.CreatedAt)
}

func (r *tenantRepo) GetByName(ctx context.Context, name string) (*domain.Tenant, error) {
	query := `SELECT id, name, created_at FROM tenants WHERE name = $1 ORDER BY created_at LIMIT 1`
	var t domain.Tenant
	if err := r.db.QueryRow(ctx, query, name).Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
