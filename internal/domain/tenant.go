package domain

import (
	"context"
	"time"
)

type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type TenantRepository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByName(ctx context.Context, name string) (*Tenant, error)
}
