package repository

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// DepositRepository puerto de persistencia de señas.
type DepositRepository interface {
	Create(ctx context.Context, d *entity.Deposit) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Deposit, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Deposit, error)
	Update(ctx context.Context, d *entity.Deposit) error
	ListBySale(ctx context.Context, tenantID, saleID string) ([]*entity.Deposit, error)
	ListByOffer(ctx context.Context, tenantID, offerID string) ([]*entity.Deposit, error)
}
