package repository

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// ContractRepository puerto de persistencia de contratos.
type ContractRepository interface {
	Create(ctx context.Context, c *entity.Contract) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Contract, error)
	GetByNumber(ctx context.Context, tenantID, number string) (*entity.Contract, error)
}

// PaymentPlanRepository puerto de persistencia de cronogramas (plan + ítems).
type PaymentPlanRepository interface {
	Create(ctx context.Context, p *entity.PaymentPlan) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.PaymentPlan, error)
	// GetLatestBySale plan más reciente de la venta aún sin contrato.
	GetLatestBySale(ctx context.Context, tenantID, saleID string) (*entity.PaymentPlan, error)
	GetByContract(ctx context.Context, tenantID, contractID string) (*entity.PaymentPlan, error)
	LinkContract(ctx context.Context, tenantID, planID, contractID string) error
}
