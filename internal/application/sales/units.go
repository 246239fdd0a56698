package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/Emlak-api/internal/domain"
	"github.com/jhoicas/Emlak-api/internal/domain/entity"
)

// Gestor de disponibilidad: una unidad Reserved/Sold está retenida por exactamente una venta activa.

func (c *core) lockUnit(ctx context.Context, r Repos, tenantID, unitID string) (*entity.Unit, error) {
	u, err := r.Units.GetForUpdate(ctx, tenantID, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("unit", unitID)
	}
	return u, nil
}

// otherHolders ventas distintas de saleID que retienen la unidad.
func (c *core) otherHolders(ctx context.Context, r Repos, tenantID, unitID, saleID string) (int, error) {
	holders, err := r.Sales.ListHoldingByUnit(ctx, tenantID, unitID, saleID)
	if err != nil {
		return 0, err
	}
	return len(holders), nil
}

// ensureMatchable una venta que no retiene la unidad solo puede apuntar a una unidad libre.
func (c *core) ensureMatchable(ctx context.Context, r Repos, u *entity.Unit, saleID string) error {
	if u.Status == entity.UnitForSale {
		return nil
	}
	n, err := c.otherHolders(ctx, r, u.TenantID, u.ID, saleID)
	if err != nil {
		return err
	}
	if n > 0 || u.Status == entity.UnitSold {
		return fmt.Errorf("%w: unidad %s en estado %s", domain.ErrUnitUnavailable, u.Code, u.Status)
	}
	return nil
}

// reserveUnit marca la unidad Reserved para saleID. Idempotente si ya la retiene.
func (c *core) reserveUnit(ctx context.Context, r Repos, tenantID, unitID, saleID string) (*entity.Unit, error) {
	u, err := c.lockUnit(ctx, r, tenantID, unitID)
	if err != nil {
		return nil, err
	}
	n, err := c.otherHolders(ctx, r, tenantID, unitID, saleID)
	if err != nil {
		return nil, err
	}
	if n > 0 || u.Status == entity.UnitSold {
		return nil, fmt.Errorf("%w: unidad %s en estado %s", domain.ErrUnitUnavailable, u.Code, u.Status)
	}
	if u.Status == entity.UnitReserved {
		return u, nil
	}
	u.Status = entity.UnitReserved
	u.UpdatedAt = c.now()
	if err := r.Units.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// sellUnit marca la unidad Sold. saleID vacío = cierre por oferta sin venta asociada.
func (c *core) sellUnit(ctx context.Context, r Repos, tenantID, unitID, saleID string) (*entity.Unit, error) {
	u, err := c.lockUnit(ctx, r, tenantID, unitID)
	if err != nil {
		return nil, err
	}
	n, err := c.otherHolders(ctx, r, tenantID, unitID, saleID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: unidad %s retenida por otra venta", domain.ErrUnitUnavailable, u.Code)
	}
	if u.Status == entity.UnitSold {
		return u, nil
	}
	u.Status = entity.UnitSold
	u.UpdatedAt = c.now()
	if err := r.Units.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// releaseUnit libera la unidad salvo que otra venta activa la retenga.
func (c *core) releaseUnit(ctx context.Context, r Repos, tenantID, unitID, saleID string) error {
	u, err := c.lockUnit(ctx, r, tenantID, unitID)
	if err != nil {
		return err
	}
	if u.Status == entity.UnitForSale {
		return nil
	}
	n, err := c.otherHolders(ctx, r, tenantID, unitID, saleID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	u.Status = entity.UnitForSale
	u.UpdatedAt = c.now()
	return r.Units.Update(ctx, u)
}
