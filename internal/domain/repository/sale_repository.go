package repository

import (
	"context"

	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	Status     entity.SaleStatus
	AssignedTo string
	CustomerID string
}

// SaleRepository puerto de persistencia de ventas. Todas las consultas van acotadas por tenant.
type SaleRepository interface {
	Create(ctx context.Context, s *entity.Sale) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	Update(ctx context.Context, s *entity.Sale) error
	List(ctx context.Context, tenantID string, f SaleFilter, limit, offset int) ([]*entity.Sale, error)
	// FindActiveByCustomerAndUnit venta no Lost del par (cliente, unidad); nil si no hay.
	FindActiveByCustomerAndUnit(ctx context.Context, tenantID, customerID, unitID string) (*entity.Sale, error)
	// ListHoldingByUnit ventas que retienen la unidad (ver pipeline.HoldsUnit), excluyendo exceptSaleID.
	ListHoldingByUnit(ctx context.Context, tenantID, unitID, exceptSaleID string) ([]*entity.Sale, error)
	// CountOpenByAssignees ventas abiertas por vendedor; los ausentes cuentan 0.
	CountOpenByAssignees(ctx context.Context, tenantID string, userIDs []string) (map[string]int, error)
}
