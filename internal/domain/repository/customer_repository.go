package repository

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// CustomerRepository puerto de persistencia de clientes.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Customer, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error)
}
